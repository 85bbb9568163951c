package parallel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xgaming6285/filecompressor/pkg/codec"
	"github.com/xgaming6285/filecompressor/pkg/rle"
)

func rlePrimitive() codec.Primitive {
	return codec.Primitive{ID: codec.RLE, Compress: rle.Compress, Decompress: rle.Decompress}
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	src := make([]byte, 10000)
	for i := range src {
		src[i] = byte(i % 7)
	}
	out, stats, err := Compress(context.Background(), src, rlePrimitive(), 4)
	require.NoError(t, err)
	assert.Greater(t, stats.ChunkCount, 0)

	decoded, err := Decompress(context.Background(), out, rlePrimitive(), 4)
	require.NoError(t, err)
	assert.Equal(t, src, decoded)
}

func TestOptimalThreadCountCaps(t *testing.T) {
	assert.Equal(t, 64, OptimalThreadCount(1000))
	assert.GreaterOrEqual(t, OptimalThreadCount(-5), 1)
}

func TestChunkCountFallsBackToOneForSmallInput(t *testing.T) {
	assert.Equal(t, 1, chunkCount(100, 8))
}

func TestDecompressRejectsTruncatedHeader(t *testing.T) {
	_, err := Decompress(context.Background(), []byte{1, 2}, rlePrimitive(), 2)
	assert.Error(t, err)
}
