package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/securevault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocal(t *testing.T, max int) *Local {
	t.Helper()
	l, err := NewLocal(StaticKey(common.GenerateRandByteArray(32)), max)
	require.NoError(t, err)
	return l
}

func TestNewLocal_RejectsBadKey(t *testing.T) {
	_, err := NewLocal(StaticKey([]byte("short")), 0)
	assert.Error(t, err)

	_, err = NewLocal(nil, 0)
	assert.Error(t, err)
}

func TestLocal_RoundTrip(t *testing.T) {
	l := newTestLocal(t, 0)
	ctx := context.Background()

	p, err := l.Encrypt(ctx, []byte("my secret note"))
	require.NoError(t, err)
	assert.Len(t, p.IV, 12)
	assert.Len(t, p.Tag, 16)

	got, err := l.Decrypt(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, []byte("my secret note"), got)
}

func TestLocal_FreshIVPerCall(t *testing.T) {
	l := newTestLocal(t, 0)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		p, err := l.Encrypt(context.Background(), []byte("same"))
		require.NoError(t, err)
		require.False(t, seen[string(p.IV)], "iv repeated")
		seen[string(p.IV)] = true
	}
}

func TestLocal_TamperDetected(t *testing.T) {
	l := newTestLocal(t, 0)
	ctx := context.Background()

	p, err := l.Encrypt(ctx, []byte("hello"))
	require.NoError(t, err)

	bad := &EncryptedPayload{
		Ciphertext: append([]byte(nil), p.Ciphertext...),
		IV:         p.IV,
		Tag:        p.Tag,
	}
	bad.Ciphertext[0] ^= 0x01

	got, err := l.Decrypt(ctx, bad)
	assert.ErrorIs(t, err, common.ErrIntegrity)
	assert.Nil(t, got)

	_, err = l.Decrypt(ctx, nil)
	assert.ErrorIs(t, err, common.ErrIntegrity)
}

func TestLocal_OversizedRejected(t *testing.T) {
	l := newTestLocal(t, 8)

	_, err := l.Encrypt(context.Background(), make([]byte, 9))
	require.ErrorIs(t, err, common.ErrValidation)

	var ve *common.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "content", ve.Field)

	_, err = l.Encrypt(context.Background(), make([]byte, 8))
	assert.NoError(t, err)
}

func TestLocal_CancelledContext(t *testing.T) {
	l := newTestLocal(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Encrypt(ctx, []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}
