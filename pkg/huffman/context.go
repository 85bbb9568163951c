package huffman

import "github.com/xgaming6285/filecompressor/pkg/fcerr"

// Context is the two-pass streaming state described in spec §3/§4.3:
// pass 1 accumulates frequencies across chunks via CountFrequencies,
// then BuildTreeAndCodes fixes the tree, then repeated CompressChunk
// calls emit the bits for each chunk's bytes, and Finalize flushes the
// trailing partial byte. It is created per job and owned by a single
// worker — never shared, mirroring spec §3's "mutated only by its
// owning worker" lifecycle rule.
type Context struct {
	freqs         [256]uint64
	maxCodeLength int
	tree          *Tree
	codes         [256]code
	bw            bitWriter
}

// NewContext creates a fresh pass-1 context.
func NewContext(maxCodeLength int) *Context {
	if maxCodeLength <= 0 {
		maxCodeLength = DefaultMaxCodeLength
	}
	return &Context{maxCodeLength: maxCodeLength}
}

// CountFrequencies accumulates byte frequencies for one chunk (pass 1).
func (c *Context) CountFrequencies(chunk []byte) {
	for _, b := range chunk {
		c.freqs[b]++
	}
}

// BuildTreeAndCodes transitions from pass 1 to pass 2: builds the tree
// from accumulated frequencies and derives the code table.
func (c *Context) BuildTreeAndCodes() {
	c.tree = BuildTree(c.freqs)
	c.codes = c.tree.Codes(c.maxCodeLength)
}

// Tree exposes the built tree, e.g. so the caller can start a
// DecodeState against it.
func (c *Context) Tree() *Tree { return c.tree }

// CompressChunk emits exactly the bits for input's codes (pass 2),
// returning any whole bytes that have become available so far. Partial
// bits remain buffered in the context until the next call or Finalize.
func (c *Context) CompressChunk(input []byte) []byte {
	before := len(c.bw.out)
	for _, b := range input {
		code := c.codes[b]
		c.bw.writeBits(code.bits, code.length)
	}
	out := c.bw.out[before:]
	return out
}

// Finalize flushes the final partial byte with zero padding and returns
// it (empty if the stream ended on a byte boundary).
func (c *Context) Finalize() []byte {
	before := len(c.bw.out)
	c.bw.finalize()
	return c.bw.out[before:]
}

// DecodeState is the resumable decompression-side streaming state:
// (tree, partial bit index, current node). It is driven by DecodeChunk,
// which produces output bytes until either input or output is
// exhausted -- the two outcomes are distinguished so a caller can tell
// "need more compressed bytes" from "block is fully decoded".
type DecodeState struct {
	tree      *Tree
	br        bitReader
	cur       uint32
	produced  uint64
	wantBytes uint64
}

// NewDecodeState begins decoding against tree, expecting wantBytes of
// output in total.
func NewDecodeState(tree *Tree, wantBytes uint64) *DecodeState {
	return &DecodeState{tree: tree, cur: tree.root, wantBytes: wantBytes}
}

// Exhaustion distinguishes why DecodeChunk stopped producing bytes.
type Exhaustion int

const (
	NeedMoreInput Exhaustion = iota
	OutputComplete
)

// DecodeChunk feeds more compressed bytes in and appends decoded bytes
// to dst, returning the extended slice and which condition halted it.
func (s *DecodeState) DecodeChunk(dst []byte, input []byte) ([]byte, Exhaustion, error) {
	s.br.buf = input
	s.br.pos = 0
	for s.produced < s.wantBytes {
		n := s.tree.nodes[s.cur]
		if n.IsLeaf {
			dst = append(dst, n.Byte)
			s.produced++
			s.cur = s.tree.root
			continue
		}
		bit, ok := s.br.readBit()
		if !ok {
			return dst, NeedMoreInput, nil
		}
		if bit == 0 {
			if n.Left == invalidIndex {
				return dst, NeedMoreInput, fcerr.New(fcerr.CodecCorrupt, "huffman.DecodeChunk", "malformed tree path", nil)
			}
			s.cur = n.Left
		} else if n.Right != invalidIndex {
			s.cur = n.Right
		} else {
			s.cur = n.Left
		}
	}
	return dst, OutputComplete, nil
}

// Done reports whether wantBytes have all been produced.
func (s *DecodeState) Done() bool { return s.produced >= s.wantBytes }
