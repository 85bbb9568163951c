package huffman

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte("a"),
		[]byte("aaaaaaaaaa"),
		[]byte("the quick brown fox jumps over the lazy dog"),
		[]byte("abababababababababab"),
	}
	for _, src := range cases {
		out := Compress(src, DefaultMaxCodeLength)
		decoded, err := Decompress(out)
		require.NoError(t, err)
		assert.Equal(t, src, decoded)
	}
}

func TestDegenerateSingleSymbolTree(t *testing.T) {
	src := []byte("zzzzzzzzzzzz")
	out := Compress(src, DefaultMaxCodeLength)
	decoded, err := Decompress(out)
	require.NoError(t, err)
	assert.Equal(t, src, decoded)
}

func TestDepthLimitFreezesCodeLength(t *testing.T) {
	// A heavily skewed frequency distribution with a small maxCodeLength
	// forces the DFS to hit the freeze branch in Codes.
	src := make([]byte, 0, 300)
	for i := 0; i < 256; i++ {
		src = append(src, byte(i))
	}
	src = append(src, 0) // skew byte 0's frequency
	out := Compress(src, 4)
	decoded, err := Decompress(out)
	require.NoError(t, err)
	assert.Equal(t, src, decoded)
}

func TestStreamingContextRoundTrip(t *testing.T) {
	chunks := [][]byte{
		[]byte("hello "),
		[]byte("streaming "),
		[]byte("world"),
	}
	ctx := NewContext(DefaultMaxCodeLength)
	for _, c := range chunks {
		ctx.CountFrequencies(c)
	}
	ctx.BuildTreeAndCodes()

	var compressed []byte
	for _, c := range chunks {
		compressed = append(compressed, ctx.CompressChunk(c)...)
	}
	compressed = append(compressed, ctx.Finalize()...)

	var want []byte
	for _, c := range chunks {
		want = append(want, c...)
	}

	state := NewDecodeState(ctx.Tree(), uint64(len(want)))
	out, exhaustion, err := state.DecodeChunk(nil, compressed)
	require.NoError(t, err)
	assert.Equal(t, OutputComplete, exhaustion)
	assert.Equal(t, want, out)
}

func TestEmptyInput(t *testing.T) {
	out := Compress(nil, DefaultMaxCodeLength)
	decoded, err := Decompress(out)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}
