// Package orchestrator resolves a caller's Request into the concrete
// pipeline of filters and codecs that satisfies it (spec §4.11): an
// optional dedup pass, optional encryption, and then exactly one codec
// delivery mechanism -- a direct primitive call, the worker-pool driver,
// or a progressive/split container running the primitive per block or
// part internally.
//
// It plays the role the teacher's cmd/nsz/main.go plays for NCA/NCZ/XCI
// files: the single place that looks at what the caller asked for and
// picks which lower-level functions to call in which order, without any
// of those lower-level packages needing to know about each other.
package orchestrator

import (
	"context"
	"io"
	"os"

	"github.com/xgaming6285/filecompressor/pkg/checksum"
	"github.com/xgaming6285/filecompressor/pkg/chunkio"
	"github.com/xgaming6285/filecompressor/pkg/codec"
	"github.com/xgaming6285/filecompressor/pkg/config"
	"github.com/xgaming6285/filecompressor/pkg/dedup"
	"github.com/xgaming6285/filecompressor/pkg/fcerr"
	"github.com/xgaming6285/filecompressor/pkg/parallel"
	"github.com/xgaming6285/filecompressor/pkg/progressive"
	"github.com/xgaming6285/filecompressor/pkg/split"
	"github.com/xgaming6285/filecompressor/pkg/xorcipher"
)

// Request is the single caller-facing description of a job (spec §4.11
// / §6's CLI flags, stripped of the flag-parsing concern -- cmd/
// filecompressor builds a Request from flags and hands it here).
type Request struct {
	Compress bool // false = decompress
	Codec    codec.ID

	InputPath  string
	OutputPath string

	Config config.Config
}

// Result reports what actually happened, for the CLI to print.
type Result struct {
	OriginalSize   int64
	OutputSize     int64
	ParallelStats  *parallel.Stats
	DedupStats     *dedup.Stats
	Warnings       []string
}

// Run resolves and executes req's pipeline end to end (spec §4.11).
func Run(ctx context.Context, req Request) (Result, error) {
	cfg, err := req.Config.Resolve()
	if err != nil {
		return Result{}, err
	}
	if req.Compress {
		return runCompress(ctx, req, cfg)
	}
	return runDecompress(ctx, req, cfg)
}

func runCompress(ctx context.Context, req Request, cfg config.Config) (Result, error) {
	src, err := readAllChunked(req.InputPath, cfg.BufferSize)
	if err != nil {
		return Result{}, err
	}
	res := Result{OriginalSize: int64(len(src))}

	prim := codec.Registry(cfg)[req.Codec]

	// Stage 1: optional content-defined dedup filter runs before any
	// codec sees the bytes (spec §4.10/§4.11 pipeline order).
	stage := src
	if cfg.Dedup {
		deduped, stats := dedup.Compress(stage, cfg.DedupMode, cfg.DedupChunkSize, cfg.DedupHashKind)
		stage = deduped
		res.DedupStats = &stats
	}

	// Stage 2: optional encryption filter runs on the dedup output,
	// before whichever codec delivery mechanism is chosen below.
	if len(cfg.EncryptionKey) > 0 {
		enc, err := xorcipher.Encrypt(stage, cfg.EncryptionKey)
		if err != nil {
			return Result{}, err
		}
		stage = enc
	}

	// Stage 3: exactly one codec delivery mechanism. A container owns its
	// own per-block or per-part codec compression (spec §4.8/§4.9), so it
	// replaces the direct/worker-pool codec call rather than wrapping its
	// output -- stacking them would run the primitive twice and make a
	// progressive container's blocks undecodable on their own.
	switch {
	case cfg.Progressive:
		f, err := os.Create(req.OutputPath)
		if err != nil {
			return Result{}, fcerr.New(fcerr.IoOpen, "orchestrator.Run", req.OutputPath, err)
		}
		defer f.Close()
		opts := progressive.Options{
			BlockSize:          cfg.BlockSize,
			FileChecksumKind:   cfg.ChecksumKind,
			BlockChecksumKind:  cfg.ChecksumKind,
			StreamingOptimized: cfg.Streaming,
		}
		if err := progressive.Compress(f, stage, prim, opts); err != nil {
			return Result{}, err
		}
		info, _ := f.Stat()
		if info != nil {
			res.OutputSize = info.Size()
		}
	case cfg.Split:
		warnings, err := split.Compress(req.OutputPath, stage, prim, cfg.MaxPartSize, cfg.ChecksumKind, cfg.BufferSize)
		res.Warnings = append(res.Warnings, warnings...)
		if err != nil {
			return Result{}, err
		}
	case cfg.LargeFile:
		out, stats, err := parallel.Compress(ctx, stage, prim, cfg.Threads)
		if err != nil {
			return Result{}, err
		}
		res.ParallelStats = &stats
		if err := writeAllChunked(req.OutputPath, out, cfg.BufferSize); err != nil {
			return Result{}, err
		}
		res.OutputSize = int64(len(out))
	default:
		compressed := prim.Compress(stage)
		if err := writeAllChunked(req.OutputPath, compressed, cfg.BufferSize); err != nil {
			return Result{}, err
		}
		res.OutputSize = int64(len(compressed))
	}

	return res, nil
}

func runDecompress(ctx context.Context, req Request, cfg config.Config) (Result, error) {
	prim := codec.Registry(cfg)[req.Codec]
	res := Result{}

	// Stage 3 reversed: unwrap whichever codec delivery mechanism produced
	// the bytes, yielding the same post-dedup, post-encryption stream
	// runCompress fed into it.
	var stage []byte
	switch {
	case cfg.Progressive:
		f, err := os.Open(req.InputPath)
		if err != nil {
			return Result{}, fcerr.New(fcerr.IoOpen, "orchestrator.Run", req.InputPath, err)
		}
		defer f.Close()
		if cfg.ProgressiveRange != nil {
			rng := cfg.ProgressiveRange
			decoded, err := progressive.DecodeRange(f, prim, rng[0], rng[1])
			if err != nil {
				return Result{}, err
			}
			stage = decoded
		} else {
			decoded, err := progressive.DecodeAll(f, prim)
			if err != nil {
				return Result{}, err
			}
			stage = decoded
		}
	case cfg.Split:
		decoded, err := split.Decompress(req.InputPath, prim, cfg.BufferSize)
		if err != nil {
			return Result{}, err
		}
		stage = decoded
	case cfg.LargeFile:
		raw, err := readAllChunked(req.InputPath, cfg.BufferSize)
		if err != nil {
			return Result{}, err
		}
		decoded, err := parallel.Decompress(ctx, raw, prim, cfg.Threads)
		if err != nil {
			return Result{}, err
		}
		stage = decoded
	default:
		raw, err := readAllChunked(req.InputPath, cfg.BufferSize)
		if err != nil {
			return Result{}, err
		}
		decoded, err := prim.Decompress(raw)
		if err != nil {
			return Result{}, err
		}
		stage = decoded
	}

	// Stage 2 reversed: decrypt if an encryption key was supplied. Note
	// this only holds for cfg.ProgressiveRange == nil; decrypting a
	// sub-range of a progressive container requires offset-aware XOR
	// decoding that range decode does not attempt (see DESIGN.md).
	if len(cfg.EncryptionKey) > 0 {
		dec, err := xorcipher.Decrypt(stage, cfg.EncryptionKey)
		if err != nil {
			return Result{}, err
		}
		stage = dec
	}

	return finishDecompress(req, cfg, stage, &res)
}

// finishDecompress reverses the dedup stage (if enabled) and writes the
// final bytes to disk.
func finishDecompress(req Request, cfg config.Config, stage []byte, res *Result) (Result, error) {
	if res == nil {
		res = &Result{}
	}
	out := stage
	if cfg.Dedup {
		decoded, err := dedup.Decompress(stage)
		if err != nil {
			return Result{}, err
		}
		out = decoded
	}
	if err := writeAllChunked(req.OutputPath, out, cfg.BufferSize); err != nil {
		return Result{}, err
	}
	res.OutputSize = int64(len(out))
	return *res, nil
}

// ChecksumOf is a small helper the CLI uses to render a digest of the
// output file for its "-V" verbose status line (spec §6).
func ChecksumOf(path string, kind checksum.Kind) (checksum.Value, error) {
	data, err := readAllChunked(path, 0)
	if err != nil {
		return checksum.Value{}, err
	}
	return checksum.Compute(kind, data), nil
}

// readAllChunked and writeAllChunked are the whole-buffer entry points
// into pkg/chunkio (spec §4.1) for every pipeline stage that doesn't
// need io.Seeker/io.ReaderAt (the progressive container does, and keeps
// using os.Create/os.Open directly for that reason). bufferSize == 0
// falls through to chunkio.DefaultChunkSize.
func readAllChunked(path string, bufferSize int) ([]byte, error) {
	r, err := chunkio.Open(path, bufferSize)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out := make([]byte, 0, r.Size())
	for {
		chunk, err := r.NextChunk()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
	return out, nil
}

func writeAllChunked(path string, data []byte, bufferSize int) error {
	w, err := chunkio.Create(path, bufferSize)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fcerr.New(fcerr.IoWrite, "orchestrator.writeAllChunked", path, err)
	}
	if err := w.Close(); err != nil {
		return err
	}
	return nil
}
