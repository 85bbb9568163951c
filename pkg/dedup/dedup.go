// Package dedup implements the content-defined deduplication filter from
// spec §4.10: a pre-codec pass that splits a buffer into chunks, indexes
// each chunk's hash in a fixed-bucket table, and replaces any repeat
// chunk with a back-reference to the first occurrence.
//
// It is grounded on the other_examples dedup writer's core idea -- index
// known chunk hashes in a map and emit either raw bytes or a reference --
// generalized from that package's io.Writer/streaming shape to this
// module's whole-buffer Primitive convention, and on the teacher's habit
// of picking the concrete algorithm the spec names (crypto/sha1,
// crypto/md5, hash/crc32) rather than reaching for a hashing framework.
// The XXH64 option uses github.com/cespare/xxhash/v2, already a
// dependency of the retrieval pack's BeHierarchic tree and widely present
// as an indirect dependency elsewhere in the pack.
package dedup

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/binary"
	"hash/crc32"

	"github.com/cespare/xxhash/v2"

	"github.com/xgaming6285/filecompressor/pkg/checksum"
	"github.com/xgaming6285/filecompressor/pkg/config"
	"github.com/xgaming6285/filecompressor/pkg/fcerr"
)

const Magic = "DEDUP"

const numBuckets = 65536

// rolling-hash constants for variable/smart chunking (spec §4.10: Rabin-
// Karp style rolling hash, window 48, prime 31, boundary mask 0xFFFF).
const (
	rollingWindow = 48
	rollingPrime  = 31
	boundaryMask  = 0x0000FFFF
)

// Entry records one known chunk for stats/inspection purposes; the
// on-disk format only ever needs the hash table built while encoding.
type Entry struct {
	Hash           [20]byte
	OriginalOffset uint64
	Size           uint32
	RefCount       uint32
}

// Stats summarizes a dedup pass (spec §4.10 DedupStats).
type Stats struct {
	TotalChunks      int
	UniqueChunks     int
	DuplicateChunks  int
	OriginalSize     int64
	DedupedSize      int64
}

func hashChunk(kind config.DedupHash, data []byte) [20]byte {
	switch kind {
	case config.DedupHashMD5:
		sum := md5.Sum(data)
		return checksum.PadTo20(sum[:])
	case config.DedupHashCRC32:
		sum := crc32.ChecksumIEEE(data)
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, sum)
		return checksum.PadTo20(buf)
	case config.DedupHashXXH64:
		sum := xxhash.Sum64(data)
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, sum)
		return checksum.PadTo20(buf)
	default:
		sum := sha1.Sum(data)
		return checksum.PadTo20(sum[:])
	}
}

func bucketOf(h [20]byte) uint16 {
	return uint16(h[0])<<8 | uint16(h[1])
}

// chunkBoundaries splits src into chunk [lo,hi) spans per mode.
func chunkBoundaries(src []byte, mode config.DedupMode, chunkSize int) [][2]int {
	if chunkSize <= 0 {
		chunkSize = config.DefaultDedupChunk
	}
	switch mode {
	case config.DedupFixed:
		return fixedBoundaries(len(src), chunkSize)
	default:
		// Variable and Smart both use the rolling-hash boundary finder
		// (spec §4.10 Open Question: "Smart" resolved as an alias of
		// Variable -- see SPEC_FULL.md §12).
		return rollingBoundaries(src, chunkSize)
	}
}

func fixedBoundaries(size, chunkSize int) [][2]int {
	if size == 0 {
		return nil
	}
	var bounds [][2]int
	for lo := 0; lo < size; lo += chunkSize {
		hi := lo + chunkSize
		if hi > size {
			hi = size
		}
		bounds = append(bounds, [2]int{lo, hi})
	}
	return bounds
}

// rollingBoundaries implements a Rabin-Karp style rolling hash over a
// 48-byte window that restarts at each chunk start; a boundary is
// declared wherever hash&boundaryMask is zero, bounded below by chunkSize/4 and above by
// chunkSize*4 so outputs stay in a usable size band (spec §4.10).
func rollingBoundaries(src []byte, chunkSize int) [][2]int {
	size := len(src)
	if size == 0 {
		return nil
	}
	minChunk := chunkSize / 4
	if minChunk < 1 {
		minChunk = 1
	}
	maxChunk := chunkSize * 4

	var bounds [][2]int
	lo := 0
	var hash uint64
	var power uint64 = 1
	for i := 1; i < rollingWindow; i++ {
		power *= rollingPrime
	}

	for i := 0; i < size; i++ {
		hash = hash*rollingPrime + uint64(src[i])
		if i-lo >= rollingWindow {
			hash -= power * uint64(src[i-rollingWindow]) * rollingPrime
		}
		length := i - lo + 1
		atBoundary := length >= rollingWindow && (hash&boundaryMask) == 0
		if (atBoundary && length >= minChunk) || length >= maxChunk {
			bounds = append(bounds, [2]int{lo, i + 1})
			lo = i + 1
			hash = 0
		}
	}
	if lo < size {
		bounds = append(bounds, [2]int{lo, size})
	}
	return bounds
}

// Compress implements spec §4.10's encode: chunk src, hash each chunk,
// and emit either a literal chunk or a reference to its first occurrence
// via a 65536-bucket hash table with a per-bucket list of known chunks.
// Layout: "DEDUP" | original_size u64 | total_chunks u64 |
// {chunk_size u32, is_ref u8, ref? original_offset u64 : bytes}*.
func Compress(src []byte, mode config.DedupMode, chunkSize int, hashKind config.DedupHash) ([]byte, Stats) {
	bounds := chunkBoundaries(src, mode, chunkSize)

	buckets := make([][]int, numBuckets) // bucket -> indices into `seen`
	type seenChunk struct {
		hash   [20]byte
		size   int
		offset int
	}
	var seen []seenChunk

	out := make([]byte, 0, len(src)/2+32)
	out = append(out, Magic...)
	tmp8 := make([]byte, 8)
	binary.LittleEndian.PutUint64(tmp8, uint64(len(src)))
	out = append(out, tmp8...)
	binary.LittleEndian.PutUint64(tmp8, uint64(len(bounds)))
	out = append(out, tmp8...)

	stats := Stats{TotalChunks: len(bounds), OriginalSize: int64(len(src))}

	for _, b := range bounds {
		lo, hi := b[0], b[1]
		data := src[lo:hi]
		h := hashChunk(hashKind, data)
		bucket := bucketOf(h)

		var match *seenChunk
		for _, idx := range buckets[bucket] {
			c := &seen[idx]
			if c.size == len(data) && c.hash == h {
				match = c
				break
			}
		}

		tmp4 := make([]byte, 4)
		binary.LittleEndian.PutUint32(tmp4, uint32(len(data)))
		out = append(out, tmp4...)

		if match != nil {
			out = append(out, 1)
			binary.LittleEndian.PutUint64(tmp8, uint64(match.offset))
			out = append(out, tmp8...)
			stats.DuplicateChunks++
			stats.DedupedSize += 13 // chunk_size + is_ref + offset
		} else {
			out = append(out, 0)
			out = append(out, data...)
			buckets[bucket] = append(buckets[bucket], len(seen))
			seen = append(seen, seenChunk{hash: h, size: len(data), offset: lo})
			stats.UniqueChunks++
			stats.DedupedSize += int64(5 + len(data))
		}
	}
	return out, stats
}

// Decompress reverses Compress: every literal chunk is remembered by its
// original offset so later references can be resolved against the
// reconstructed output directly.
func Decompress(src []byte) ([]byte, error) {
	if len(src) < 5+8+8 || string(src[:5]) != Magic {
		return nil, fcerr.New(fcerr.CodecCorrupt, "dedup.Decompress", "bad magic", nil)
	}
	pos := 5
	originalSize := binary.LittleEndian.Uint64(src[pos : pos+8])
	pos += 8
	totalChunks := binary.LittleEndian.Uint64(src[pos : pos+8])
	pos += 8

	out := make([]byte, 0, originalSize)
	for i := uint64(0); i < totalChunks; i++ {
		if pos+4+1 > len(src) {
			return nil, fcerr.New(fcerr.CodecCorrupt, "dedup.Decompress", "truncated chunk header", nil)
		}
		size := binary.LittleEndian.Uint32(src[pos : pos+4])
		pos += 4
		isRef := src[pos]
		pos++

		if isRef == 1 {
			if pos+8 > len(src) {
				return nil, fcerr.New(fcerr.CodecCorrupt, "dedup.Decompress", "truncated reference offset", nil)
			}
			offset := binary.LittleEndian.Uint64(src[pos : pos+8])
			pos += 8
			if offset+uint64(size) > uint64(len(out)) {
				return nil, fcerr.New(fcerr.CodecCorrupt, "dedup.Decompress", "reference out of range", nil)
			}
			out = append(out, out[offset:offset+uint64(size)]...)
		} else {
			if pos+int(size) > len(src) {
				return nil, fcerr.New(fcerr.CodecCorrupt, "dedup.Decompress", "truncated chunk data", nil)
			}
			out = append(out, src[pos:pos+int(size)]...)
			pos += int(size)
		}
	}
	if uint64(len(out)) != originalSize {
		return nil, fcerr.New(fcerr.CodecCorrupt, "dedup.Decompress", "reassembled size mismatch", nil)
	}
	return out, nil
}
