// Package cryptox implements the authenticated encryption used for vault
// content: AES-256-GCM with a fresh 12-byte nonce per call. The GCM tag is
// kept apart from the ciphertext so rows can store the triple separately.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/securevault/internal/common"
)

const (
	KeySize   = 32
	NonceSize = 12
	TagSize   = 16
)

// ErrOpen is returned for any authentication failure in Open.
var ErrOpen = errors.New("cryptox: message authentication failed")

// Sealed is the output of Seal.
type Sealed struct {
	Ciphertext []byte
	IV         []byte
	Tag        []byte
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("cryptox: key must be %d bytes, got %d", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	return cipher.NewGCMWithNonceSize(block, NonceSize)
}

// Seal encrypts plaintext under key with a random nonce.
func Seal(key, plaintext []byte) (*Sealed, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(NonceSize)
	out := aead.Seal(nil, nonce, plaintext, nil)

	split := len(out) - TagSize
	return &Sealed{
		Ciphertext: out[:split:split],
		IV:         nonce,
		Tag:        out[split:],
	}, nil
}

// Open authenticates and decrypts s. Any modification of the ciphertext,
// nonce or tag yields ErrOpen and no plaintext.
func Open(key []byte, s *Sealed) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if s == nil || len(s.IV) != NonceSize || len(s.Tag) != TagSize {
		return nil, ErrOpen
	}

	buf := make([]byte, 0, len(s.Ciphertext)+TagSize)
	buf = append(buf, s.Ciphertext...)
	buf = append(buf, s.Tag...)

	plaintext, err := aead.Open(nil, s.IV, buf, nil)
	if err != nil {
		return nil, ErrOpen
	}

	return plaintext, nil
}
