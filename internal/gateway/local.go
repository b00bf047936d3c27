package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/securevault/internal/common"
	"github.com/dmitrijs2005/securevault/internal/cryptox"
)

// DefaultMaxPlaintextSize bounds a single encryption request.
const DefaultMaxPlaintextSize = 64 << 10

// KeySource exposes key bytes without copying them. *secret.Buffer
// satisfies it.
type KeySource interface {
	Bytes() []byte
}

// StaticKey is a KeySource over an ordinary slice. It is meant for tests
// and for the in-process development mode.
type StaticKey []byte

func (k StaticKey) Bytes() []byte { return k }

// Local is the in-process EncryptionProvider holding the vault key.
type Local struct {
	key          KeySource
	maxPlaintext int
}

func NewLocal(key KeySource, maxPlaintext int) (*Local, error) {
	if key == nil || len(key.Bytes()) != cryptox.KeySize {
		return nil, fmt.Errorf("vault key must be %d bytes", cryptox.KeySize)
	}
	if maxPlaintext <= 0 {
		maxPlaintext = DefaultMaxPlaintextSize
	}
	return &Local{key: key, maxPlaintext: maxPlaintext}, nil
}

func (l *Local) Encrypt(ctx context.Context, plaintext []byte) (*EncryptedPayload, error) {
	if len(plaintext) > l.maxPlaintext {
		return nil, common.NewValidationError("content",
			fmt.Sprintf("content exceeds %d bytes", l.maxPlaintext))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s, err := cryptox.Seal(l.key.Bytes(), plaintext)
	if err != nil {
		return nil, err
	}

	return &EncryptedPayload{Ciphertext: s.Ciphertext, IV: s.IV, Tag: s.Tag}, nil
}

func (l *Local) Decrypt(ctx context.Context, payload *EncryptedPayload) ([]byte, error) {
	if payload == nil {
		return nil, common.ErrIntegrity
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	plaintext, err := cryptox.Open(l.key.Bytes(), &cryptox.Sealed{
		Ciphertext: payload.Ciphertext,
		IV:         payload.IV,
		Tag:        payload.Tag,
	})
	if errors.Is(err, cryptox.ErrOpen) {
		return nil, common.ErrIntegrity
	}
	if err != nil {
		return nil, err
	}

	return plaintext, nil
}
