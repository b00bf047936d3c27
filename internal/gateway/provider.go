// Package gateway is the encryption boundary for vault content.
//
// The vault key lives only inside a Local provider. The server process
// reaches it through the gRPC client in gateway/grpc, which implements the
// same EncryptionProvider interface, so the vault service cannot tell an
// in-process boundary from a remote one.
package gateway

import "context"

// EncryptedPayload is the atomic triple produced by one encryption.
type EncryptedPayload struct {
	Ciphertext []byte `json:"ciphertext"`
	IV         []byte `json:"iv"`
	Tag        []byte `json:"tag"`
}

// EncryptionProvider encrypts and decrypts vault content.
//
// Encrypt returns a *common.ValidationError for oversized input.
// Decrypt returns common.ErrIntegrity when the payload fails
// authentication. Transport failures wrap common.ErrServiceUnavailable.
type EncryptionProvider interface {
	Encrypt(ctx context.Context, plaintext []byte) (*EncryptedPayload, error)
	Decrypt(ctx context.Context, payload *EncryptedPayload) ([]byte, error)
}
