package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/xgaming6285/filecompressor/pkg/checksum"
	"github.com/xgaming6285/filecompressor/pkg/codec"
	"github.com/xgaming6285/filecompressor/pkg/config"
	"github.com/xgaming6285/filecompressor/pkg/fcerr"
	"github.com/xgaming6285/filecompressor/pkg/orchestrator"
)

func main() {
	compressFlag := flag.Bool("c", false, "compress the input file")
	decompressFlag := flag.Bool("d", false, "decompress the input file")
	algo := flag.String("a", "huffman", "codec: huffman, rle, lz77")
	threads := flag.Int("t", 0, "worker thread count, 0 = auto")
	key := flag.String("k", "", "encryption key (enables the XOR filter)")
	preset := flag.String("O", "default", "lz77 preset: default, speed, size")
	bufferSize := flag.Int("B", 0, "I/O buffer size in bytes, 0 = default")
	largeFile := flag.Bool("L", false, "drive the worker-pool chunked path")
	progressiveFlag := flag.Bool("I", false, "write/read a progressive (indexable) container")
	progressiveRange := flag.String("R", "", "block range to decode, e.g. 0-3 (progressive only)")
	splitFlag := flag.Bool("S", false, "split output across numbered part files")
	maxPartSize := flag.Int64("P", 0, "max bytes per split part, 0 = default")
	dedupFlag := flag.Bool("X", false, "run the deduplication filter before the codec")
	dedupMode := flag.String("M", "variable", "dedup chunking: fixed, variable, smart")
	dedupChunk := flag.Int("D", 0, "dedup target chunk size in bytes, 0 = default")
	checksumFlag := flag.String("C", "crc32", "checksum kind: none, crc32, md5, sha256")
	streamOpt := flag.Bool("H", false, "pad progressive blocks to a fixed stride for O(1) seeking")
	verbose := flag.Bool("V", false, "print a checksum of the output alongside sizes")
	flag.Parse()

	fmt.Println("filecompressor")

	if *compressFlag == *decompressFlag {
		fmt.Fprintln(os.Stderr, "exactly one of -c or -d is required")
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: filecompressor [-c|-d] [options] <input> <output>")
		os.Exit(1)
	}

	resolvedThreads := *threads
	if resolvedThreads == 0 {
		if v, ok := os.LookupEnv("OMP_NUM_THREADS"); ok {
			if n, err := strconv.Atoi(v); err == nil {
				resolvedThreads = n
			}
		}
	}
	resolvedBufferSize := *bufferSize
	if resolvedBufferSize == 0 {
		if v, ok := os.LookupEnv("COMPRESSION_BUFFER_SIZE"); ok {
			if n, err := strconv.Atoi(v); err == nil {
				resolvedBufferSize = n
			}
		}
	}

	cfg := config.Config{
		Threads:         resolvedThreads,
		BufferSize:      resolvedBufferSize,
		Preset:          parsePreset(*preset),
		ChecksumKind:    parseChecksumKind(*checksumFlag),
		EncryptionKey:   []byte(*key),
		Progressive:     *progressiveFlag,
		Streaming:       *streamOpt,
		Split:           *splitFlag,
		MaxPartSize:     *maxPartSize,
		Dedup:           *dedupFlag,
		DedupChunkSize:  *dedupChunk,
		DedupHashKind:   config.DedupHashSHA1,
		DedupMode:       parseDedupMode(*dedupMode),
		LargeFile:       *largeFile,
	}
	if rng, ok := parseRange(*progressiveRange); ok {
		cfg.ProgressiveRange = &rng
	}

	req := orchestrator.Request{
		Compress:   *compressFlag,
		Codec:      parseCodec(*algo),
		InputPath:  args[0],
		OutputPath: args[1],
		Config:     cfg,
	}

	res, err := orchestrator.Run(context.Background(), req)
	if err != nil {
		var fe *fcerr.Error
		if fcerr.As(err, &fe) {
			fmt.Fprintf(os.Stderr, "error [%s] %s: %v\n", fe.Kind, fe.Op, err)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}

	for _, w := range res.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	fmt.Printf("original: %d bytes, output: %d bytes\n", res.OriginalSize, res.OutputSize)
	if res.DedupStats != nil {
		s := res.DedupStats
		fmt.Printf("dedup: %d chunks, %d unique, %d duplicate\n", s.TotalChunks, s.UniqueChunks, s.DuplicateChunks)
	}
	if res.ParallelStats != nil {
		s := res.ParallelStats
		fmt.Printf("parallel: %d chunks\n", s.ChunkCount)
	}
	if *verbose && req.Compress {
		sum, err := orchestrator.ChecksumOf(req.OutputPath, cfg.ChecksumKind)
		if err == nil && sum.Kind != checksum.None {
			fmt.Printf("checksum (%s): %x\n", sum.Kind, sum.Payload)
		}
	}
}

func parseCodec(s string) codec.ID {
	switch strings.ToLower(s) {
	case "rle":
		return codec.RLE
	case "lz77":
		return codec.LZ77
	default:
		return codec.Huffman
	}
}

func parsePreset(s string) config.Preset {
	switch strings.ToLower(s) {
	case "speed":
		return config.PresetSpeed
	case "size":
		return config.PresetSize
	default:
		return config.PresetDefault
	}
}

func parseChecksumKind(s string) checksum.Kind {
	switch strings.ToLower(s) {
	case "md5":
		return checksum.MD5
	case "sha256":
		return checksum.SHA256
	case "none":
		return checksum.None
	default:
		return checksum.CRC32
	}
}

func parseDedupMode(s string) config.DedupMode {
	switch strings.ToLower(s) {
	case "fixed":
		return config.DedupFixed
	case "smart":
		return config.DedupSmart
	default:
		return config.DedupVariable
	}
}

// parseRange parses "A-B" into a [2]uint32 block range for progressive
// range decoding (spec §6 "-R").
func parseRange(s string) ([2]uint32, bool) {
	if s == "" {
		return [2]uint32{}, false
	}
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return [2]uint32{}, false
	}
	lo, err1 := strconv.ParseUint(parts[0], 10, 32)
	hi, err2 := strconv.ParseUint(parts[1], 10, 32)
	if err1 != nil || err2 != nil {
		return [2]uint32{}, false
	}
	return [2]uint32{uint32(lo), uint32(hi)}, true
}
