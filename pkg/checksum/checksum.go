// Package checksum is the checksum kernel described in spec §4.2: one
// abstract tagged-value interface behind four kinds (none, CRC32, MD5,
// SHA256). The teacher reaches for crypto/aes and crypto/cipher directly
// rather than a third-party crypto library when the algorithm itself is
// the standard one it needs; we do the same here with hash/crc32,
// crypto/md5, and crypto/sha256, since those are the canonical
// definitions the spec requires byte-for-byte (§9: "MD5/SHA-256 in the
// repository are stub implementations; the spec requires real
// algorithms").
package checksum

import (
	"bytes"
	"crypto/md5"
	"crypto/sha256"
	"encoding/binary"
	"hash/crc32"

	"github.com/xgaming6285/filecompressor/pkg/fcerr"
)

// Kind identifies which algorithm produced a Value.
type Kind uint8

const (
	None Kind = iota
	CRC32
	MD5
	SHA256
)

// Width returns the payload width in bytes for a Kind, 0 for None.
func (k Kind) Width() int {
	switch k {
	case CRC32:
		return 4
	case MD5:
		return 16
	case SHA256:
		return 32
	default:
		return 0
	}
}

func (k Kind) String() string {
	switch k {
	case CRC32:
		return "crc32"
	case MD5:
		return "md5"
	case SHA256:
		return "sha256"
	default:
		return "none"
	}
}

// Value is a tagged checksum: Kind plus exactly Kind.Width() payload
// bytes. The zero Value is {None, nil}.
type Value struct {
	Kind    Kind
	Payload []byte
}

// Compute produces a tagged Value over data for the requested Kind.
func Compute(kind Kind, data []byte) Value {
	switch kind {
	case CRC32:
		sum := crc32.ChecksumIEEE(data)
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, sum)
		return Value{Kind: CRC32, Payload: buf}
	case MD5:
		sum := md5.Sum(data)
		return Value{Kind: MD5, Payload: sum[:]}
	case SHA256:
		sum := sha256.Sum256(data)
		return Value{Kind: SHA256, Payload: sum[:]}
	default:
		return Value{Kind: None}
	}
}

// Equal reports whether data hashes to the same bytes stored in v.
func Equal(v Value, data []byte) bool {
	if v.Kind == None {
		return true
	}
	got := Compute(v.Kind, data)
	return bytes.Equal(got.Payload, v.Payload)
}

// WriteTo appends the wire form (tag byte + fixed-width payload) to buf
// and returns the extended slice.
func (v Value) WriteTo(buf []byte) []byte {
	buf = append(buf, byte(v.Kind))
	if v.Kind != None {
		buf = append(buf, v.Payload...)
	}
	return buf
}

// Read parses a tagged Value from the front of buf, returning the value
// and the number of bytes consumed.
func Read(buf []byte) (Value, int, error) {
	if len(buf) < 1 {
		return Value{}, 0, fcerr.New(fcerr.CodecCorrupt, "checksum.Read", "truncated checksum tag", nil)
	}
	kind := Kind(buf[0])
	width := kind.Width()
	if len(buf) < 1+width {
		return Value{}, 0, fcerr.New(fcerr.CodecCorrupt, "checksum.Read", "truncated checksum payload", nil)
	}
	var payload []byte
	if width > 0 {
		payload = append([]byte(nil), buf[1:1+width]...)
	}
	return Value{Kind: kind, Payload: payload}, 1 + width, nil
}

// PadTo20 right-pads (or truncates, which never happens for the defined
// kinds) a checksum payload to the fixed 20-byte field the deduplication
// filter indexes hashes by (spec §4.10).
func PadTo20(payload []byte) [20]byte {
	var out [20]byte
	copy(out[:], payload)
	return out
}
