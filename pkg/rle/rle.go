// Package rle implements the run-length primitive codec (spec §4.4).
package rle

import (
	"encoding/binary"

	"github.com/xgaming6285/filecompressor/pkg/fcerr"
)

// Compress emits [original_size i64][(count,value)...] runs, splitting
// any run longer than 255 identical bytes into consecutive runs of 255
// (spec §3 RLE run invariant).
func Compress(src []byte) []byte {
	out := make([]byte, 8, len(src)/2+8)
	binary.LittleEndian.PutUint64(out[:8], uint64(len(src)))

	for i := 0; i < len(src); {
		v := src[i]
		j := i + 1
		for j < len(src) && src[j] == v && j-i < 255 {
			j++
		}
		count := byte(j - i)
		out = append(out, count, v)
		i = j
	}
	return out
}

// Decompress reads original_size then emits pairs until exactly that
// many bytes have been produced. Premature EOF is Codec::Corrupt.
func Decompress(src []byte) ([]byte, error) {
	if len(src) < 8 {
		return nil, fcerr.New(fcerr.CodecCorrupt, "rle.Decompress", "truncated header", nil)
	}
	originalSize := binary.LittleEndian.Uint64(src[:8])
	out := make([]byte, 0, originalSize)
	pos := 8

	for uint64(len(out)) < originalSize {
		if pos+2 > len(src) {
			return nil, fcerr.New(fcerr.CodecCorrupt, "rle.Decompress", "premature end of run stream", nil)
		}
		count := src[pos]
		value := src[pos+1]
		pos += 2
		for i := byte(0); i < count; i++ {
			out = append(out, value)
		}
	}
	if uint64(len(out)) != originalSize {
		return nil, fcerr.New(fcerr.CodecCorrupt, "rle.Decompress", "run stream overshot original_size", nil)
	}
	return out, nil
}
