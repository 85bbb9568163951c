// Package xorcipher is the encryption filter from spec §4.6: a fixed
// ASCII header followed by a stream XORed with key bytes cycled modulo
// key length. It is grounded in the teacher's pkg/crypto, which also
// exposes a small set of free functions over byte slices independent of
// any codec (ECBEncrypt/ECBDecrypt, NewCTRStream) -- the shape carries
// over even though the algorithm here is the spec's key-cycled XOR, not
// AES. Spec §1 Non-goals are explicit that this offers no cryptographic
// strength, only obfuscation.
package xorcipher

import (
	"bytes"

	"github.com/xgaming6285/filecompressor/pkg/fcerr"
	"github.com/xgaming6285/filecompressor/pkg/lz77"
)

// Header is the fixed 9-byte ASCII marker preceding every encrypted
// stream (spec §3/§6). No trailing null.
const Header = "ENCRYPTED"

// Encrypt validates the key, then returns Header followed by src XORed
// with key cycled modulo len(key). Empty key is Config::Invalid.
func Encrypt(src, key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, fcerr.New(fcerr.ConfigInvalid, "xorcipher.Encrypt", "encryption key must be non-empty", nil)
	}
	out := make([]byte, 0, len(Header)+len(src))
	out = append(out, Header...)
	out = append(out, xor(src, key)...)
	return out, nil
}

// Decrypt verifies the header then applies the same XOR to undo
// Encrypt. A wrong key decrypts "successfully" here (XOR has no
// integrity check) and surfaces as Codec::Corrupt further down the
// pipeline, which spec §7 calls acceptable.
func Decrypt(src, key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, fcerr.New(fcerr.ConfigInvalid, "xorcipher.Decrypt", "encryption key must be non-empty", nil)
	}
	if len(src) < len(Header) || !bytes.Equal(src[:len(Header)], []byte(Header)) {
		return nil, fcerr.New(fcerr.CodecCorrupt, "xorcipher.Decrypt", "missing ENCRYPTED header", nil)
	}
	return xor(src[len(Header):], key), nil
}

func xor(data, key []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ key[i%len(key)]
	}
	return out
}

// CompressAndEncrypt runs the LZ77 codec to a temporary byte buffer,
// then encrypts that buffer (spec §4.6: "the combined 'compress-and-
// encrypt' operation runs the LZ77 codec ... then encrypts"). Unlike the
// source, the "temporary buffer" here is just a Go []byte -- no file is
// ever created, per spec §9's "eliminate the temporary-file bridge".
func CompressAndEncrypt(src []byte, params lz77.Params, key []byte) ([]byte, error) {
	compressed := lz77.Compress(src, params)
	return Encrypt(compressed, key)
}

// DecryptAndDecompress reverses CompressAndEncrypt.
func DecryptAndDecompress(src, key []byte) ([]byte, error) {
	compressed, err := Decrypt(src, key)
	if err != nil {
		return nil, err
	}
	return lz77.Decompress(compressed)
}
