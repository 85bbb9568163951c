// Package split implements the split-archive wrapper from spec §4.9:
// one logical compressed output spread across numbered part files, each
// carrying a header recording global size and part ordering.
//
// It is grounded directly on the teacher's pkg/fs/pfs0.go and
// pfs0_writer.go: a fixed encoding/binary header, sequential part
// construction (every size is known before a part's header is written,
// so no placeholder or seek is needed), and a reader that validates a
// magic number before
// trusting the rest of the structure. Per-part file I/O runs through
// pkg/chunkio rather than bare os.File, the same leaf layer the
// progressive container would use if it didn't need random access.
package split

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/xgaming6285/filecompressor/pkg/checksum"
	"github.com/xgaming6285/filecompressor/pkg/chunkio"
	"github.com/xgaming6285/filecompressor/pkg/codec"
	"github.com/xgaming6285/filecompressor/pkg/config"
	"github.com/xgaming6285/filecompressor/pkg/fcerr"
)

const Magic = "SPLT"

const maxParts = 9999

// Header is the per-part header (spec §3/§6). ChecksumPayload is always
// 32 bytes on the wire regardless of ChecksumType's real width, matching
// spec §6's literal "checksum_payload: 32 B" field.
type Header struct {
	PartNumber  uint32 // 1-based
	TotalParts  uint32
	PartSize    uint64
	TotalSize   uint64
	ChecksumType checksum.Kind
	Checksum    [32]byte
}

const headerWireSize = 4 + 4 + 4 + 8 + 8 + 1 + 32

func writeHeader(w io.Writer, h Header) error {
	buf := make([]byte, 0, headerWireSize)
	buf = append(buf, Magic...)
	tmp4 := make([]byte, 4)
	binary.LittleEndian.PutUint32(tmp4, h.PartNumber)
	buf = append(buf, tmp4...)
	binary.LittleEndian.PutUint32(tmp4, h.TotalParts)
	buf = append(buf, tmp4...)
	tmp8 := make([]byte, 8)
	binary.LittleEndian.PutUint64(tmp8, h.PartSize)
	buf = append(buf, tmp8...)
	binary.LittleEndian.PutUint64(tmp8, h.TotalSize)
	buf = append(buf, tmp8...)
	buf = append(buf, byte(h.ChecksumType))
	buf = append(buf, h.Checksum[:]...)
	_, err := w.Write(buf)
	return err
}

func readHeader(r io.Reader) (Header, error) {
	buf := make([]byte, headerWireSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Header{}, fcerr.New(fcerr.ContainerBadFormat, "split.readHeader", "truncated part header", err)
	}
	if string(buf[:4]) != Magic {
		return Header{}, fcerr.New(fcerr.ContainerBadFormat, "split.readHeader", "bad magic", nil)
	}
	h := Header{
		PartNumber:   binary.LittleEndian.Uint32(buf[4:8]),
		TotalParts:   binary.LittleEndian.Uint32(buf[8:12]),
		PartSize:     binary.LittleEndian.Uint64(buf[12:20]),
		TotalSize:    binary.LittleEndian.Uint64(buf[20:28]),
		ChecksumType: checksum.Kind(buf[28]),
	}
	copy(h.Checksum[:], buf[29:61])
	return h, nil
}

// PartPath formats <outputBase>.part<PPPP> (spec §6 default extensions).
func PartPath(outputBase string, partNumber uint32) string {
	return fmt.Sprintf("%s.part%04d", outputBase, partNumber)
}

// Compress writes codec-compressed src across numbered parts, each no
// larger than maxPartSize source bytes, clamping maxPartSize up to
// config.MinSplitSize with a warning if it's too small (spec §4.9 step
// 3). Rejects inputs that would need more than 9999 parts. Part files
// are written through chunkio.Writer, buffered at bufferSize bytes
// (spec §4.1's chunked I/O layer, honoring cfg.BufferSize).
func Compress(outputBase string, src []byte, prim codec.Primitive, maxPartSize int64, checksumKind checksum.Kind, bufferSize int) (warnings []string, err error) {
	if maxPartSize < config.MinSplitSize {
		warnings = append(warnings, fmt.Sprintf("max_part_size %d below minimum %d, clamped up", maxPartSize, config.MinSplitSize))
		maxPartSize = config.MinSplitSize
	}

	totalSize := int64(len(src))
	totalParts := uint32(1)
	if totalSize > 0 {
		totalParts = uint32((totalSize + maxPartSize - 1) / maxPartSize)
	}
	if totalParts > maxParts {
		return warnings, fcerr.New(fcerr.ConfigInvalid, "split.Compress", fmt.Sprintf("would need %d parts, limit is %d", totalParts, maxParts), nil)
	}

	globalChecksum := checksum.Compute(checksumKind, src)
	var checksumArr [32]byte
	copy(checksumArr[:], globalChecksum.Payload)

	for p := uint32(1); p <= totalParts; p++ {
		lo := int64(p-1) * maxPartSize
		hi := lo + maxPartSize
		if hi > totalSize {
			hi = totalSize
		}
		raw := src[lo:hi]
		compressed := prim.Compress(raw)

		path := PartPath(outputBase, p)
		f, err := chunkio.Create(path, bufferSize)
		if err != nil {
			return warnings, err
		}
		h := Header{
			PartNumber:   p,
			TotalParts:   totalParts,
			PartSize:     uint64(hi - lo),
			TotalSize:    uint64(totalSize),
			ChecksumType: checksumKind,
			Checksum:     checksumArr,
		}
		if err := writeHeader(f, h); err != nil {
			f.Close()
			return warnings, fcerr.New(fcerr.IoWrite, "split.Compress", path, err)
		}
		if _, err := f.Write(compressed); err != nil {
			f.Close()
			return warnings, fcerr.New(fcerr.IoWrite, "split.Compress", path, err)
		}
		if err := f.Close(); err != nil {
			return warnings, fcerr.New(fcerr.IoWrite, "split.Compress", path, err)
		}
	}
	return warnings, nil
}

// Decompress reads part 1's header to learn total_parts and the global
// checksum kind, then iterates parts 1..N, decoding each part's
// compressed bytes and concatenating them in order (spec §4.9). A
// missing or out-of-order part is Container::MissingPart(p). Part files
// are read through chunkio.Reader, buffered at bufferSize bytes.
func Decompress(outputBase string, prim codec.Primitive, bufferSize int) ([]byte, error) {
	firstPath := PartPath(outputBase, 1)
	f, err := chunkio.Open(firstPath, bufferSize)
	if err != nil {
		return nil, fcerr.NewBlock(fcerr.ContainerMissingPart, "split.Decompress", firstPath, 1, err)
	}
	h1, err := readHeader(f)
	f.Close()
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, h1.TotalSize)
	for p := uint32(1); p <= h1.TotalParts; p++ {
		path := PartPath(outputBase, p)
		pf, err := chunkio.Open(path, bufferSize)
		if err != nil {
			return nil, fcerr.NewBlock(fcerr.ContainerMissingPart, "split.Decompress", path, int64(p), err)
		}
		h, err := readHeader(pf)
		if err != nil {
			pf.Close()
			return nil, err
		}
		if h.PartNumber != p || h.TotalParts != h1.TotalParts {
			pf.Close()
			return nil, fcerr.NewBlock(fcerr.ContainerMissingPart, "split.Decompress", path, int64(p), nil)
		}
		compressed, err := io.ReadAll(pf)
		pf.Close()
		if err != nil {
			return nil, fcerr.New(fcerr.IoRead, "split.Decompress", path, err)
		}
		decoded, err := prim.Decompress(compressed)
		if err != nil {
			return nil, fcerr.New(fcerr.CodecCorrupt, "split.Decompress", path, err)
		}
		out = append(out, decoded...)
	}
	return out, nil
}
