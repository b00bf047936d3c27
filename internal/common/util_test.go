package common

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeRandHexString(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{name: "zero", size: 0},
		{name: "sixteen", size: 16},
		{name: "thirty two", size: 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := MakeRandHexString(tt.size)
			require.NoError(t, err)
			assert.Len(t, s, tt.size*2)

			_, err = hex.DecodeString(s)
			assert.NoError(t, err)
		})
	}
}

func TestMakeRandHexString_Distinct(t *testing.T) {
	a, err := MakeRandHexString(32)
	require.NoError(t, err)
	b, err := MakeRandHexString(32)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestGenerateRandByteArray(t *testing.T) {
	a := GenerateRandByteArray(12)
	b := GenerateRandByteArray(12)

	assert.Len(t, a, 12)
	assert.Len(t, b, 12)
	assert.NotEqual(t, a, b)
}

func TestWipeByteArray(t *testing.T) {
	buf := []byte("plaintext")
	WipeByteArray(buf)
	assert.Equal(t, make([]byte, len("plaintext")), buf)

	assert.NotPanics(t, func() { WipeByteArray(nil) })
}
