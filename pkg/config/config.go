// Package config holds the single explicit Config record the
// orchestrator threads through every stage of a job. Spec §9's design
// notes call out the original tool's process-wide mutable globals for
// the encryption key, buffer size, optimization goal, and thread count
// as a defect to eliminate; this package is that elimination. Nothing in
// this module reaches for a global variable to hold caller-supplied
// state — it is constructed once (by the CLI, in cmd/filecompressor) and
// passed down by value/pointer like the teacher's compressionLevel and
// titleKey parameters are threaded through CompressNca.
package config

import (
	"os"
	"runtime"
	"strconv"

	"github.com/xgaming6285/filecompressor/pkg/checksum"
	"github.com/xgaming6285/filecompressor/pkg/lz77"
)

// Preset selects an LZ77 parameter set (spec §4.5).
type Preset int

const (
	PresetDefault Preset = iota
	PresetSpeed
	PresetSize
)

// Params returns the WindowSize/LookaheadSize/MinMatch triple for a preset.
func (p Preset) Params() lz77.Params {
	switch p {
	case PresetSpeed:
		return lz77.Params{WindowSize: 1024, LookaheadSize: 8, MinMatch: 4}
	case PresetSize:
		return lz77.Params{WindowSize: 8192, LookaheadSize: 32, MinMatch: 2}
	default:
		return lz77.Params{WindowSize: 4096, LookaheadSize: 16, MinMatch: 3}
	}
}

// MaxHuffmanCodeLength returns the compile-time Huffman tree depth limit
// for a preset (spec §3: "default 256, 32 for speed preset, 512 for size
// preset").
func (p Preset) MaxHuffmanCodeLength() int {
	switch p {
	case PresetSpeed:
		return 32
	case PresetSize:
		return 512
	default:
		return 256
	}
}

const (
	MinSplitSize        = 1 << 20        // 1 MiB
	DefaultMaxPartSize  = 100 << 20      // 100 MiB
	MinDedupChunkSize   = 4 << 10        // 4 KiB
	MaxDedupChunkSize   = 1 << 20        // 1 MiB
	DefaultDedupChunk   = 64 << 10       // 64 KiB
	DefaultBlockSize    = 1 << 20        // 1 MiB, progressive container default
	MaxThreads          = 64
)

// DedupMode selects the chunk-boundary algorithm (spec §4.10).
type DedupMode int

const (
	DedupFixed DedupMode = iota
	DedupVariable
	DedupSmart
)

// DedupHash selects the hash algorithm used to index dedup chunks.
type DedupHash int

const (
	DedupHashSHA1 DedupHash = iota
	DedupHashMD5
	DedupHashCRC32
	DedupHashXXH64
)

// Config is the single explicit record threaded through the
// orchestrator. Every field has a zero value that Resolve() turns into a
// concrete default, mirroring the "≤ 0 → auto" behavior the CLI table in
// spec §6 specifies per flag.
type Config struct {
	Threads       int // 0 => auto (logical cores, capped at MaxThreads)
	BufferSize    int // I/O chunk size in bytes, 0 => chunkio.DefaultChunkSize
	Preset        Preset
	ChecksumKind  checksum.Kind
	EncryptionKey []byte // nil/empty => encryption disabled

	Progressive    bool
	ProgressiveRange *[2]uint32 // nil => full decode
	Streaming      bool
	BlockSize      uint32

	Split       bool
	MaxPartSize int64

	Dedup           bool
	DedupChunkSize  int
	DedupHashKind   DedupHash
	DedupMode       DedupMode

	LargeFile bool // spec §6 "-L": drive the worker-pool/chunked path
}

// Resolve fills in zero-valued fields with their documented defaults and
// clamps out-of-range sizes into their bounds; it rejects nothing, so the
// returned error is always nil.
// It reads COMPRESSION_BUFFER_SIZE / OMP_NUM_THREADS only where the
// caller left the corresponding field unset, matching "CLI flags
// override" in spec §6.
func (c Config) Resolve() (Config, error) {
	out := c

	if out.Threads <= 0 {
		if v, ok := os.LookupEnv("OMP_NUM_THREADS"); ok {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				out.Threads = n
			}
		}
	}
	if out.Threads <= 0 {
		out.Threads = runtime.NumCPU()
	}
	if out.Threads > MaxThreads {
		out.Threads = MaxThreads
	}

	if out.BufferSize <= 0 {
		if v, ok := os.LookupEnv("COMPRESSION_BUFFER_SIZE"); ok {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				out.BufferSize = n
			}
		}
	}
	if out.BufferSize <= 0 {
		out.BufferSize = 64 * 1024
	}

	if out.BlockSize == 0 {
		out.BlockSize = DefaultBlockSize
	}

	if out.MaxPartSize == 0 {
		out.MaxPartSize = DefaultMaxPartSize
	}
	if out.MaxPartSize < MinSplitSize {
		out.MaxPartSize = MinSplitSize // clamped; caller should warn
	}

	if out.DedupChunkSize == 0 {
		out.DedupChunkSize = DefaultDedupChunk
	}
	if out.DedupChunkSize < MinDedupChunkSize {
		out.DedupChunkSize = MinDedupChunkSize
	}
	if out.DedupChunkSize > MaxDedupChunkSize {
		out.DedupChunkSize = MaxDedupChunkSize
	}

	return out, nil
}
