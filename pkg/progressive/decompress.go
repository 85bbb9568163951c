package progressive

import (
	"io"

	"github.com/xgaming6285/filecompressor/pkg/checksum"
	"github.com/xgaming6285/filecompressor/pkg/codec"
	"github.com/xgaming6285/filecompressor/pkg/fcerr"
)

// State is the decode-side state machine from spec §4.8:
// Uninitialized -> HeaderLoaded -> (Positioned <-> BlockDecoded) -> Closed.
type State int

const (
	Uninitialized State = iota
	HeaderLoaded
	Positioned
	BlockDecoded
	Closed
)

// Context is a ProgressiveContext: Open() reads the header, Seek()
// positions at a block boundary, DecodeBlock() emits that block's
// decoded bytes. A decode call in any state other than HeaderLoaded or
// Positioned is an error (spec §4.8).
type Context struct {
	ra   io.ReaderAt
	prim codec.Primitive
	state State

	Header Header

	headerEnd     int64
	nextBlockID   uint32 // block the cursor is positioned at
	nextOffset    int64  // byte offset of that block's BlockHeader
	fixedStride   int64  // valid when Header.streamingOptimized()
}

// Open reads the file header from ra and transitions to HeaderLoaded.
// For a streaming-optimized container it also peeks the first block's
// header once to learn the per-block checksum kind (and thus the fixed
// on-disk stride every subsequent block occupies).
func Open(ra io.ReaderAt, prim codec.Primitive) (*Context, error) {
	sr := io.NewSectionReader(ra, 0, 1<<62)
	h, err := readHeader(sr)
	if err != nil {
		return nil, err
	}
	headerEnd, _ := sr.Seek(0, io.SeekCurrent)

	c := &Context{ra: ra, prim: prim, state: HeaderLoaded, Header: h, headerEnd: headerEnd, nextOffset: headerEnd}

	if h.streamingOptimized() && h.TotalBlocks > 0 {
		_, wireSize, err := readBlockHeader(io.NewSectionReader(ra, headerEnd, 1<<62))
		if err != nil {
			return nil, err
		}
		c.fixedStride = wireSize + int64(h.BlockSize)
	}
	return c, nil
}

// Seek positions the context at blockID, either via the fixed-stride
// formula (FlagStreamingOptimized) or by a linear skip reading each
// preceding BlockHeader's compressed_size (spec §4.8).
func (c *Context) Seek(blockID uint32) error {
	if c.state == Uninitialized || c.state == Closed {
		return fcerr.New(fcerr.ContainerBadFormat, "progressive.Seek", "context not ready", nil)
	}
	if c.Header.TotalBlocks == 0 {
		return fcerr.New(fcerr.ContainerBadFormat, "progressive.Seek", "container has no blocks", nil)
	}
	if blockID >= c.Header.TotalBlocks {
		return fcerr.New(fcerr.ContainerBadFormat, "progressive.Seek", "block id out of range", nil)
	}

	if c.Header.streamingOptimized() {
		c.nextOffset = c.headerEnd + int64(blockID)*c.fixedStride
		c.nextBlockID = blockID
		c.state = Positioned
		return nil
	}

	if blockID < c.nextBlockID {
		c.nextBlockID = 0
		c.nextOffset = c.headerEnd
	}
	for c.nextBlockID < blockID {
		bh, wireSize, err := readBlockHeader(io.NewSectionReader(c.ra, c.nextOffset, 1<<62))
		if err != nil {
			return err
		}
		c.nextOffset += wireSize + int64(bh.CompressedSize)
		c.nextBlockID++
	}
	c.state = Positioned
	return nil
}

// DecodeBlock decodes the block at the current cursor, advances the
// cursor to the next block, and returns the decoded original bytes.
// If the stored checksum doesn't match, it still returns the decoded
// bytes alongside a Container::ChecksumMismatch error tagged with the
// failing block id (spec §4.8/§7: "callers may still consume
// successfully decoded prior blocks").
func (c *Context) DecodeBlock() ([]byte, error) {
	if c.state != HeaderLoaded && c.state != Positioned && c.state != BlockDecoded {
		return nil, fcerr.New(fcerr.ContainerBadFormat, "progressive.DecodeBlock", "decode called outside HeaderLoaded/Positioned/BlockDecoded", nil)
	}
	bh, wireSize, err := readBlockHeader(io.NewSectionReader(c.ra, c.nextOffset, 1<<62))
	if err != nil {
		return nil, err
	}
	if bh.BlockID != c.nextBlockID {
		return nil, fcerr.New(fcerr.ContainerBadFormat, "progressive.DecodeBlock", "block id sequence mismatch", nil)
	}

	bodyOffset := c.nextOffset + wireSize
	payload := make([]byte, bh.CompressedSize)
	if bh.CompressedSize > 0 {
		if _, err := io.ReadFull(io.NewSectionReader(c.ra, bodyOffset, int64(bh.CompressedSize)), payload); err != nil {
			return nil, fcerr.New(fcerr.IoRead, "progressive.DecodeBlock", "block payload", err)
		}
	}

	var checksumErr error
	if bh.Checksum.Kind != checksum.None && !checksum.Equal(bh.Checksum, payload) {
		checksumErr = fcerr.NewBlock(fcerr.ContainerChecksumMismatch, "progressive.DecodeBlock", "", int64(bh.BlockID), nil)
	}

	var decoded []byte
	if bh.storedRaw() {
		// Stored raw (compression would have expanded it; see Compress).
		decoded = payload
	} else {
		decoded, err = c.prim.Decompress(payload)
		if err != nil {
			return nil, fcerr.NewBlock(fcerr.CodecCorrupt, "progressive.DecodeBlock", "", int64(bh.BlockID), err)
		}
	}

	if c.Header.streamingOptimized() {
		c.nextOffset += c.fixedStride
	} else {
		c.nextOffset = bodyOffset + int64(bh.CompressedSize)
	}
	c.nextBlockID = bh.BlockID + 1
	c.state = BlockDecoded

	if checksumErr != nil {
		return decoded, checksumErr
	}
	return decoded, nil
}

// Close transitions the context to the terminal Closed state.
func (c *Context) Close() error {
	c.state = Closed
	return nil
}

// DecodeAll decodes every block in order and concatenates the result
// (spec §4.8 "Full" protocol, §8 "Progressive full" property).
func DecodeAll(ra io.ReaderAt, prim codec.Primitive) ([]byte, error) {
	c, err := Open(ra, prim)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	if c.Header.TotalBlocks == 0 {
		return []byte{}, nil
	}
	if err := c.Seek(0); err != nil {
		return nil, err
	}
	out := make([]byte, 0, c.Header.OriginalSize)
	var firstMismatch error
	for i := uint32(0); i < c.Header.TotalBlocks; i++ {
		b, err := c.DecodeBlock()
		if err != nil {
			if fcerr.Is(err, fcerr.ContainerChecksumMismatch) {
				if firstMismatch == nil {
					firstMismatch = err
				}
				out = append(out, b...)
				continue
			}
			return out, err
		}
		out = append(out, b...)
	}
	return out, firstMismatch
}

// DecodeRange decodes blocks [startBlock, endBlock] inclusive and
// returns the decoded bytes for that block span (spec §4.8 "Range"
// protocol, §8 "Progressive range" property).
func DecodeRange(ra io.ReaderAt, prim codec.Primitive, startBlock, endBlock uint32) ([]byte, error) {
	c, err := Open(ra, prim)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	if endBlock >= c.Header.TotalBlocks {
		endBlock = c.Header.TotalBlocks - 1
	}
	if err := c.Seek(startBlock); err != nil {
		return nil, err
	}
	var out []byte
	for i := startBlock; i <= endBlock; i++ {
		b, err := c.DecodeBlock()
		if err != nil && !fcerr.Is(err, fcerr.ContainerChecksumMismatch) {
			return out, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// StreamCallback receives decoded block bytes; returning true stops
// iteration (spec §4.8 "Stream" protocol).
type StreamCallback func(block []byte) (stop bool)

// DecodeStream decodes like DecodeAll but invokes cb after each block,
// stopping early if cb returns true.
func DecodeStream(ra io.ReaderAt, prim codec.Primitive, cb StreamCallback) error {
	c, err := Open(ra, prim)
	if err != nil {
		return err
	}
	defer c.Close()
	if c.Header.TotalBlocks == 0 {
		return nil
	}
	if err := c.Seek(0); err != nil {
		return err
	}
	for i := uint32(0); i < c.Header.TotalBlocks; i++ {
		b, err := c.DecodeBlock()
		if err != nil && !fcerr.Is(err, fcerr.ContainerChecksumMismatch) {
			return err
		}
		if cb(b) {
			return nil
		}
	}
	return nil
}
