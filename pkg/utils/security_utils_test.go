package utils

import (
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("rahasia123")
	require.NoError(t, err)
	assert.NotEqual(t, "rahasia123", hash)
	assert.True(t, CheckPassword(hash, "rahasia123"))
	assert.False(t, CheckPassword(hash, "rahasia124"))
}

func TestAESRoundTrip(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	ciphertext, err := EncryptAES([]byte("rahasia123"), key)
	require.NoError(t, err)
	assert.NotContains(t, ciphertext, "rahasia123")

	plaintext, err := DecryptAES(ciphertext, key)
	require.NoError(t, err)
	assert.Equal(t, "rahasia123", string(plaintext))
}

func TestDecryptAESWrongKey(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	ciphertext, err := EncryptAES([]byte("rahasia123"), key)
	require.NoError(t, err)

	other := make([]byte, 32)
	_, err = rand.Read(other)
	require.NoError(t, err)

	_, err = DecryptAES(ciphertext, other)
	assert.Error(t, err)
}

func TestDecodeAESKey(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	decoded, err := DecodeAESKey(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, decoded)

	_, err = DecodeAESKey(base64.StdEncoding.EncodeToString(key[:16]))
	assert.Error(t, err, "only 256-bit keys are accepted")

	_, err = DecodeAESKey("not base64!!")
	assert.Error(t, err)
}
