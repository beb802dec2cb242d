package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")

	encrypted, err := Encrypt([]byte("page-access-token"), key)
	require.NoError(t, err)
	assert.NotEqual(t, "page-access-token", encrypted)

	decrypted, err := Decrypt(encrypted, key)
	require.NoError(t, err)
	assert.Equal(t, "page-access-token", decrypted)
}

func TestDecryptWrongKey(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	otherKey := []byte("fedcba9876543210fedcba9876543210")

	encrypted, err := Encrypt([]byte("secret"), key)
	require.NoError(t, err)

	_, err = Decrypt(encrypted, otherKey)
	assert.Error(t, err)
}

func TestDecryptInvalidInput(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")

	_, err := Decrypt("not-base64!!!", key)
	assert.Error(t, err)

	_, err = Decrypt("c2hvcnQ=", key) // too short for a nonce
	assert.Error(t, err)
}
