// Package lz77 implements the sliding-window LZ77 primitive codec (spec
// §4.5). Parameters are runtime arguments, not compile-time constants —
// the orchestrator picks a Preset (speed/default/size) and passes the
// resulting Params in, the same way the teacher's CompressNca takes
// compressionLevel as a plain argument rather than reading a global.
package lz77

import (
	"encoding/binary"
	"io"

	"github.com/xgaming6285/filecompressor/pkg/fcerr"
)

// Params bounds the match search (spec §4.5 presets: speed 1024/8/4,
// default 4096/16/3, size 8192/32/2).
type Params struct {
	WindowSize    int
	LookaheadSize int
	MinMatch      int
}

// DefaultParams is the "default" preset.
var DefaultParams = Params{WindowSize: 4096, LookaheadSize: 16, MinMatch: 3}

const maxMatchLen = 255

// TokenKind distinguishes the two LZ77Token variants (spec §3).
type TokenKind uint8

const (
	Literal TokenKind = 0
	Match   TokenKind = 1
)

// Token is either a single literal byte or a back-reference.
// Invariants (enforced at emission time): Length >= MinMatch,
// 0 < Offset <= WindowSize.
type Token struct {
	Kind    TokenKind
	Literal byte
	Offset  uint16
	Length  uint8
}

// Compress runs whole-file LZ77 compression over src and returns the
// wire-format stream: original_size (u64 LE) followed by the token
// stream (flag byte; literal: 1 byte; match: 2-byte big-endian offset +
// 1-byte length).
func Compress(src []byte, p Params) []byte {
	if p.WindowSize <= 0 {
		p = DefaultParams
	}
	out := make([]byte, 8, len(src)+8)
	binary.LittleEndian.PutUint64(out[:8], uint64(len(src)))

	for pos := 0; pos < len(src); {
		offset, length := findMatch(src, pos, p)
		if length >= p.MinMatch {
			// Max encodable match length is 255; split longer matches
			// into consecutive match tokens covering the remainder
			// (spec §9 "Open Question": emit a follow-up token rather
			// than truncate).
			remaining := length
			for remaining > 0 {
				chunk := remaining
				if chunk > maxMatchLen {
					chunk = maxMatchLen
				}
				if chunk < p.MinMatch && remaining != length {
					// Tail shorter than MinMatch: emit as literals
					// instead of an invalid match token.
					for i := 0; i < chunk; i++ {
						out = append(out, byte(Literal), src[pos])
						pos++
					}
					remaining -= chunk
					continue
				}
				out = append(out, byte(Match), byte(offset>>8), byte(offset), byte(chunk))
				pos += chunk
				remaining -= chunk
			}
		} else {
			out = append(out, byte(Literal), src[pos])
			pos++
		}
	}
	return out
}

// findMatch searches the previous WindowSize bytes for the longest match
// with the lookahead starting at pos, tie-breaking toward the nearest
// (smallest) offset.
func findMatch(src []byte, pos int, p Params) (offset int, length int) {
	windowStart := pos - p.WindowSize
	if windowStart < 0 {
		windowStart = 0
	}
	maxLen := len(src) - pos
	if maxLen > p.LookaheadSize {
		maxLen = p.LookaheadSize
	}
	if maxLen > maxMatchLenSearch {
		maxLen = maxMatchLenSearch
	}

	bestLen := 0
	bestOffset := 0
	for start := pos - 1; start >= windowStart; start-- {
		l := matchLength(src, start, pos, maxLen)
		if l > bestLen {
			bestLen = l
			bestOffset = pos - start
			if bestLen >= maxLen {
				break
			}
		}
	}
	return bestOffset, bestLen
}

// maxMatchLenSearch lets a single match search run past 255 bytes (the
// encode loop then splits it into consecutive tokens), bounded only by
// the lookahead window so runs of identical bytes are found in one pass.
const maxMatchLenSearch = 1 << 20

func matchLength(src []byte, start, pos, maxLen int) int {
	n := 0
	for n < maxLen && src[start+n] == src[pos+n] {
		n++
	}
	return n
}

// Decompress reverses Compress. A match token with an out-of-range
// offset or a length that would overrun original_size is reported as
// fcerr.CodecCorrupt (spec §4.5). Overlapping copies (offset < length)
// are supported by copying byte-by-byte.
func Decompress(src []byte) ([]byte, error) {
	if len(src) < 8 {
		return nil, fcerr.New(fcerr.CodecCorrupt, "lz77.Decompress", "truncated header", nil)
	}
	originalSize := binary.LittleEndian.Uint64(src[:8])
	out := make([]byte, 0, originalSize)
	pos := 8

	for uint64(len(out)) < originalSize {
		if pos >= len(src) {
			return nil, fcerr.New(fcerr.CodecCorrupt, "lz77.Decompress", "truncated token stream", io.ErrUnexpectedEOF)
		}
		flag := src[pos]
		pos++
		switch TokenKind(flag) {
		case Literal:
			if pos >= len(src) {
				return nil, fcerr.New(fcerr.CodecCorrupt, "lz77.Decompress", "truncated literal", nil)
			}
			out = append(out, src[pos])
			pos++
		case Match:
			if pos+3 > len(src) {
				return nil, fcerr.New(fcerr.CodecCorrupt, "lz77.Decompress", "truncated match", nil)
			}
			offset := int(src[pos])<<8 | int(src[pos+1])
			length := int(src[pos+2])
			pos += 3
			if offset <= 0 || offset > len(out) {
				return nil, fcerr.New(fcerr.CodecCorrupt, "lz77.Decompress", "back-reference offset out of range", nil)
			}
			if uint64(len(out)+length) > originalSize {
				return nil, fcerr.New(fcerr.CodecCorrupt, "lz77.Decompress", "match would overrun original size", nil)
			}
			start := len(out) - offset
			for i := 0; i < length; i++ {
				out = append(out, out[start+i])
			}
		default:
			return nil, fcerr.New(fcerr.CodecCorrupt, "lz77.Decompress", "unknown token flag", nil)
		}
	}
	return out, nil
}
