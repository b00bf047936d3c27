package cryptox

import (
	"testing"

	"github.com/dmitrijs2005/securevault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	return common.GenerateRandByteArray(KeySize)
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key := testKey()

	tests := []struct {
		name      string
		plaintext []byte
	}{
		{"text", []byte("my secret note")},
		{"empty", []byte{}},
		{"binary", []byte{0, 1, 2, 255, 254}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Seal(key, tt.plaintext)
			require.NoError(t, err)
			assert.Len(t, s.IV, NonceSize)
			assert.Len(t, s.Tag, TagSize)
			assert.Len(t, s.Ciphertext, len(tt.plaintext))

			got, err := Open(key, s)
			require.NoError(t, err)
			assert.Equal(t, len(tt.plaintext), len(got))
			if len(tt.plaintext) > 0 {
				assert.Equal(t, tt.plaintext, got)
			}
		})
	}
}

func TestSeal_FreshNonce(t *testing.T) {
	key := testKey()

	a, err := Seal(key, []byte("same"))
	require.NoError(t, err)
	b, err := Seal(key, []byte("same"))
	require.NoError(t, err)

	assert.NotEqual(t, a.IV, b.IV)
	assert.NotEqual(t, a.Ciphertext, b.Ciphertext)
}

func TestOpen_DetectsSingleBitFlip(t *testing.T) {
	key := testKey()
	s, err := Seal(key, []byte("top secret"))
	require.NoError(t, err)

	flip := func(b []byte) []byte {
		c := append([]byte(nil), b...)
		c[0] ^= 0x01
		return c
	}

	cases := map[string]*Sealed{
		"ciphertext": {Ciphertext: flip(s.Ciphertext), IV: s.IV, Tag: s.Tag},
		"iv":         {Ciphertext: s.Ciphertext, IV: flip(s.IV), Tag: s.Tag},
		"tag":        {Ciphertext: s.Ciphertext, IV: s.IV, Tag: flip(s.Tag)},
	}

	for name, tampered := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := Open(key, tampered)
			assert.ErrorIs(t, err, ErrOpen)
			assert.Nil(t, got)
		})
	}
}

func TestOpen_WrongKey(t *testing.T) {
	s, err := Seal(testKey(), []byte("x"))
	require.NoError(t, err)

	_, err = Open(testKey(), s)
	assert.ErrorIs(t, err, ErrOpen)
}

func TestOpen_MalformedPayload(t *testing.T) {
	key := testKey()

	_, err := Open(key, nil)
	assert.ErrorIs(t, err, ErrOpen)

	_, err = Open(key, &Sealed{Ciphertext: []byte{1}, IV: []byte{1, 2}, Tag: make([]byte, TagSize)})
	assert.ErrorIs(t, err, ErrOpen)

	_, err = Open(key, &Sealed{Ciphertext: []byte{1}, IV: make([]byte, NonceSize), Tag: []byte{1}})
	assert.ErrorIs(t, err, ErrOpen)
}

func TestBadKeySize(t *testing.T) {
	_, err := Seal([]byte("short"), []byte("x"))
	assert.Error(t, err)

	_, err = Open([]byte("short"), &Sealed{})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrOpen)
}
