package xorcipher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xgaming6285/filecompressor/pkg/lz77"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	src := []byte("a message that needs obfuscating, not real security")
	key := []byte("key123")

	enc, err := Encrypt(src, key)
	require.NoError(t, err)

	dec, err := Decrypt(enc, key)
	require.NoError(t, err)
	assert.Equal(t, src, dec)
}

func TestEmptyKeyIsConfigInvalid(t *testing.T) {
	_, err := Encrypt([]byte("x"), nil)
	assert.Error(t, err)
}

func TestDecryptRejectsMissingHeader(t *testing.T) {
	_, err := Decrypt([]byte("not encrypted"), []byte("key"))
	assert.Error(t, err)
}

func TestCompressAndEncryptRoundTrip(t *testing.T) {
	src := []byte("compress then encrypt then decrypt then decompress")
	key := []byte("anotherkey")

	enc, err := CompressAndEncrypt(src, lz77.DefaultParams, key)
	require.NoError(t, err)

	dec, err := DecryptAndDecompress(enc, key)
	require.NoError(t, err)
	assert.Equal(t, src, dec)
}
