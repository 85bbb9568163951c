package progressive

import (
	"io"

	"github.com/xgaming6285/filecompressor/pkg/checksum"
	"github.com/xgaming6285/filecompressor/pkg/codec"
	"github.com/xgaming6285/filecompressor/pkg/fcerr"
)

// Options configures a progressive Compress call.
type Options struct {
	BlockSize          uint32
	FileChecksumKind   checksum.Kind
	BlockChecksumKind  checksum.Kind
	StreamingOptimized bool
}

// Compress implements spec §4.8's compress protocol: write the header
// with a placeholder file checksum, compress each block.Size-byte slice
// of src through prim, write BlockHeader+bytes, then rewind and
// overwrite the header with the final checksum.
func Compress(w io.WriteSeeker, src []byte, prim codec.Primitive, opts Options) error {
	blockSize := opts.BlockSize
	if blockSize == 0 {
		blockSize = 1 << 20
	}
	totalBlocks := uint32(0)
	if len(src) > 0 {
		totalBlocks = uint32((int64(len(src)) + int64(blockSize) - 1) / int64(blockSize))
	}

	flags := uint8(0)
	if opts.BlockChecksumKind != checksum.None {
		flags |= FlagHasChecksum
	}
	if opts.StreamingOptimized {
		flags |= FlagStreamingOptimized
	}

	header := Header{
		Version:      CurrentVersion,
		Algorithm:    prim.ID,
		Flags:        flags,
		BlockSize:    blockSize,
		TotalBlocks:  totalBlocks,
		OriginalSize: uint64(len(src)),
		FileChecksum: checksum.Value{Kind: opts.FileChecksumKind, Payload: make([]byte, opts.FileChecksumKind.Width())},
	}
	headerStart, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return fcerr.New(fcerr.IoSeek, "progressive.Compress", "", err)
	}
	if err := writeHeader(w, header); err != nil {
		return fcerr.New(fcerr.IoWrite, "progressive.Compress", "header", err)
	}

	fileHash := newRunningHash(opts.FileChecksumKind)

	for i := uint32(0); i < totalBlocks; i++ {
		lo := int64(i) * int64(blockSize)
		hi := lo + int64(blockSize)
		if hi > int64(len(src)) {
			hi = int64(len(src))
		}
		raw := src[lo:hi]
		fileHash.write(raw)

		compressed := prim.Compress(raw)
		payload := compressed
		storedRaw := false
		if len(payload) > len(raw) {
			// Store raw when compression expands the block -- mirrors
			// the teacher's zstd.Compress "use smaller of
			// compressed/uncompressed" selection in compressBlocks. The
			// choice is recorded in bh.Flags below rather than inferred
			// from sizes on decode, since a codec's output can legally
			// be the same length as raw without having been stored raw.
			payload = raw
			storedRaw = true
		}

		if opts.StreamingOptimized {
			if uint32(len(payload)) > blockSize {
				return fcerr.New(fcerr.ConfigInvalid, "progressive.Compress", "streaming-optimized block_size too small to hold a stored-raw block", nil)
			}
		}

		blockChecksum := checksum.Value{Kind: opts.BlockChecksumKind}
		if opts.BlockChecksumKind != checksum.None {
			blockChecksum = checksum.Compute(opts.BlockChecksumKind, payload)
		}

		flags := uint8(0)
		if storedRaw {
			flags |= FlagBlockStoredRaw
		}
		bh := BlockHeader{
			BlockID:        i,
			CompressedSize: uint32(len(payload)),
			OriginalSize:   uint32(len(raw)),
			Flags:          flags,
			Checksum:       blockChecksum,
		}
		if err := writeBlockHeader(w, bh); err != nil {
			return fcerr.New(fcerr.IoWrite, "progressive.Compress", "block header", err)
		}
		if _, err := w.Write(payload); err != nil {
			return fcerr.New(fcerr.IoWrite, "progressive.Compress", "block payload", err)
		}
		if opts.StreamingOptimized {
			pad := int(blockSize) - len(payload)
			if pad > 0 {
				if _, err := w.Write(make([]byte, pad)); err != nil {
					return fcerr.New(fcerr.IoWrite, "progressive.Compress", "block padding", err)
				}
			}
		}
	}

	if _, err := w.Seek(headerStart, io.SeekStart); err != nil {
		return fcerr.New(fcerr.IoSeek, "progressive.Compress", "rewind to header", err)
	}
	header.FileChecksum = fileHash.finish()
	if err := writeHeader(w, header); err != nil {
		return fcerr.New(fcerr.IoWrite, "progressive.Compress", "header", err)
	}
	if _, err := w.Seek(0, io.SeekEnd); err != nil {
		return fcerr.New(fcerr.IoSeek, "progressive.Compress", "seek to end", err)
	}
	return nil
}

// runningHash folds successive byte slices into a single checksum.Value.
// It does not hash incrementally: for simplicity (and because whole-file
// buffers are already the in-memory contract for every primitive codec
// in this module) it accumulates into a growing buffer and hashes once
// at finish -- acceptable because the progressive container's callers
// already hold src fully in memory per spec §5.
type runningHash struct {
	kind checksum.Kind
	buf  []byte
}

func newRunningHash(kind checksum.Kind) *runningHash { return &runningHash{kind: kind} }

func (h *runningHash) write(p []byte) {
	if h.kind == checksum.None {
		return
	}
	h.buf = append(h.buf, p...)
}

func (h *runningHash) finish() checksum.Value {
	if h.kind == checksum.None {
		return checksum.Value{Kind: checksum.None}
	}
	return checksum.Compute(h.kind, h.buf)
}
