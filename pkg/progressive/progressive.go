// Package progressive implements the progressive container (spec §4.8):
// a stream packaged into independently decodable, indexable blocks with
// optional per-block checksums and support for partial-range and
// streaming decompression.
//
// It is grounded on two teacher patterns: pkg/nsz's magic-header-plus-
// block-table records (WriteNczHeader/NczBlockHeader, written with
// encoding/binary over a fixed little-endian layout) for the wire
// format, and pkg/fs/compressor.go's CompressNca two-pass write (write a
// placeholder, stream the body, seek back and overwrite the placeholder
// with the real value) for finalizing the file checksum after all
// blocks are known.
//
// Checksum fields are self-describing (a checksum.Kind tag byte
// followed by exactly Kind.Width() payload bytes, Kind == None meaning
// "absent"), so a reader never needs to guess which algorithm produced
// a stored checksum from the file-level flags alone -- it just reads the
// tag, the same way checksum.Read works everywhere else in this module.
package progressive

import (
	"encoding/binary"
	"io"

	"github.com/xgaming6285/filecompressor/pkg/checksum"
	"github.com/xgaming6285/filecompressor/pkg/codec"
	"github.com/xgaming6285/filecompressor/pkg/fcerr"
)

const (
	Magic          = "PROG"
	CurrentVersion = 1

	FlagHasChecksum        = 1 << 0
	FlagStreamingOptimized = 1 << 1
	FlagEncrypted          = 1 << 2
)

// Header is the fixed file header (spec §3/§6).
type Header struct {
	Version      uint8
	Algorithm    codec.ID
	Flags        uint8
	BlockSize    uint32
	TotalBlocks  uint32
	OriginalSize uint64
	FileChecksum checksum.Value
}

func (h Header) streamingOptimized() bool { return h.Flags&FlagStreamingOptimized != 0 }

// headerWireSize returns the byte length of the header as written,
// including its self-describing file checksum field.
func headerWireSize(h Header) int64 {
	return int64(len(Magic)+1+1+1+4+4+8) + 1 + int64(h.FileChecksum.Kind.Width())
}

func writeHeader(w io.Writer, h Header) error {
	buf := make([]byte, 0, 32)
	buf = append(buf, Magic...)
	buf = append(buf, h.Version, byte(h.Algorithm), h.Flags)
	tmp4 := make([]byte, 4)
	binary.LittleEndian.PutUint32(tmp4, h.BlockSize)
	buf = append(buf, tmp4...)
	binary.LittleEndian.PutUint32(tmp4, h.TotalBlocks)
	buf = append(buf, tmp4...)
	tmp8 := make([]byte, 8)
	binary.LittleEndian.PutUint64(tmp8, h.OriginalSize)
	buf = append(buf, tmp8...)
	buf = h.FileChecksum.WriteTo(buf)
	_, err := w.Write(buf)
	return err
}

func readHeader(r io.Reader) (Header, error) {
	fixed := make([]byte, 4+1+1+1+4+4+8)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return Header{}, fcerr.New(fcerr.ContainerBadFormat, "progressive.readHeader", "truncated header", err)
	}
	if string(fixed[:4]) != Magic {
		return Header{}, fcerr.New(fcerr.ContainerBadFormat, "progressive.readHeader", "bad magic", nil)
	}
	h := Header{
		Version:      fixed[4],
		Algorithm:    codec.ID(fixed[5]),
		Flags:        fixed[6],
		BlockSize:    binary.LittleEndian.Uint32(fixed[7:11]),
		TotalBlocks:  binary.LittleEndian.Uint32(fixed[11:15]),
		OriginalSize: binary.LittleEndian.Uint64(fixed[15:23]),
	}
	if h.Version > CurrentVersion {
		return Header{}, fcerr.New(fcerr.ContainerUnsupportedVersion, "progressive.readHeader", "", nil)
	}
	tagByte := make([]byte, 1)
	if _, err := io.ReadFull(r, tagByte); err != nil {
		return Header{}, fcerr.New(fcerr.ContainerBadFormat, "progressive.readHeader", "truncated checksum tag", err)
	}
	kind := checksum.Kind(tagByte[0])
	payload := make([]byte, kind.Width())
	if len(payload) > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return Header{}, fcerr.New(fcerr.ContainerBadFormat, "progressive.readHeader", "truncated checksum payload", err)
		}
	}
	h.FileChecksum = checksum.Value{Kind: kind, Payload: payload}
	return h, nil
}

// Block-level flag bits, stored in BlockHeader.Flags.
const (
	// FlagBlockStoredRaw marks a block whose payload is the raw,
	// uncompressed bytes rather than prim's compressed output -- set
	// whenever Compress's "use smaller of compressed/uncompressed"
	// choice picked the uncompressed side, regardless of whether the two
	// sizes happen to coincide (spec §4.8; see Compress/DecodeBlock).
	FlagBlockStoredRaw = 1 << 0
)

// BlockHeader precedes each block's compressed bytes (spec §3/§6).
type BlockHeader struct {
	BlockID        uint32
	CompressedSize uint32
	OriginalSize   uint32
	Flags          uint8
	Checksum       checksum.Value
}

func (bh BlockHeader) storedRaw() bool { return bh.Flags&FlagBlockStoredRaw != 0 }

func blockHeaderWireSize(kind checksum.Kind) int64 {
	return int64(4+4+4+1) + 1 + int64(kind.Width())
}

func writeBlockHeader(w io.Writer, bh BlockHeader) error {
	buf := make([]byte, 0, 17)
	tmp4 := make([]byte, 4)
	binary.LittleEndian.PutUint32(tmp4, bh.BlockID)
	buf = append(buf, tmp4...)
	binary.LittleEndian.PutUint32(tmp4, bh.CompressedSize)
	buf = append(buf, tmp4...)
	binary.LittleEndian.PutUint32(tmp4, bh.OriginalSize)
	buf = append(buf, tmp4...)
	buf = append(buf, bh.Flags)
	buf = bh.Checksum.WriteTo(buf)
	_, err := w.Write(buf)
	return err
}

// readBlockHeader reads a BlockHeader and returns it along with its
// total wire size (varies with the self-describing checksum tag).
func readBlockHeader(r io.Reader) (BlockHeader, int64, error) {
	fixed := make([]byte, 13)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return BlockHeader{}, 0, fcerr.New(fcerr.ContainerBadFormat, "progressive.readBlockHeader", "truncated block header", err)
	}
	bh := BlockHeader{
		BlockID:        binary.LittleEndian.Uint32(fixed[0:4]),
		CompressedSize: binary.LittleEndian.Uint32(fixed[4:8]),
		OriginalSize:   binary.LittleEndian.Uint32(fixed[8:12]),
		Flags:          fixed[12],
	}
	tagByte := make([]byte, 1)
	if _, err := io.ReadFull(r, tagByte); err != nil {
		return BlockHeader{}, 0, fcerr.New(fcerr.ContainerBadFormat, "progressive.readBlockHeader", "truncated block checksum tag", err)
	}
	kind := checksum.Kind(tagByte[0])
	payload := make([]byte, kind.Width())
	if len(payload) > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return BlockHeader{}, 0, fcerr.New(fcerr.ContainerBadFormat, "progressive.readBlockHeader", "truncated block checksum payload", err)
		}
	}
	bh.Checksum = checksum.Value{Kind: kind, Payload: payload}
	return bh, 13 + 1 + int64(kind.Width()), nil
}
