// Package codec gives the worker-pool driver, the progressive
// container, and the split-archive wrapper one shared shape for "a
// primitive codec": a whole-file CompressFunc/DecompressFunc pair. The
// three primitive codecs (Huffman, RLE, LZ77) each plug into this
// registry instead of every higher-level component special-casing three
// concrete function names -- the same role the teacher's CompressNca
// signature plays as the one thing compressBlocks' workers call.
package codec

import (
	"github.com/xgaming6285/filecompressor/pkg/config"
	"github.com/xgaming6285/filecompressor/pkg/huffman"
	"github.com/xgaming6285/filecompressor/pkg/lz77"
	"github.com/xgaming6285/filecompressor/pkg/rle"
)

// ID indexes the three primitive codecs this system defines.
type ID uint8

const (
	Huffman ID = iota
	RLE
	LZ77
)

func (id ID) String() string {
	switch id {
	case Huffman:
		return "huffman"
	case RLE:
		return "rle"
	case LZ77:
		return "lz77"
	default:
		return "unknown"
	}
}

// Primitive is a whole-file codec: CompressFunc/DecompressFunc over
// in-memory buffers. Every primitive codec exposes both this interface
// and a file interface (see pkg/orchestrator) so no component needs the
// temporary-file bridge the source used to cross API boundaries (spec §9
// design note).
type Primitive struct {
	ID         ID
	Compress   func(src []byte) []byte
	Decompress func(src []byte) ([]byte, error)
}

// Registry resolves an ID to its Primitive given a Config (the Huffman
// codec needs the configured max code length; LZ77 needs the configured
// window/lookahead/min-match preset; RLE needs nothing).
func Registry(cfg config.Config) map[ID]Primitive {
	maxLen := cfg.Preset.MaxHuffmanCodeLength()
	lzParams := cfg.Preset.Params()
	return map[ID]Primitive{
		Huffman: {
			ID:         Huffman,
			Compress:   func(src []byte) []byte { return huffman.Compress(src, maxLen) },
			Decompress: huffman.Decompress,
		},
		RLE: {
			ID:         RLE,
			Compress:   rle.Compress,
			Decompress: rle.Decompress,
		},
		LZ77: {
			ID:         LZ77,
			Compress:   func(src []byte) []byte { return lz77.Compress(src, lzParams) },
			Decompress: lz77.Decompress,
		},
	}
}
