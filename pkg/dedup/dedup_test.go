package dedup

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xgaming6285/filecompressor/pkg/config"
)

func TestCompressDecompressRoundTripFixed(t *testing.T) {
	chunk := bytes.Repeat([]byte("0123456789"), 100) // 1000 bytes
	src := append(append(append([]byte{}, chunk...), chunk...), []byte("tail")...)

	out, stats := Compress(src, config.DedupFixed, 1000, config.DedupHashSHA1)
	assert.Equal(t, 3, stats.TotalChunks)
	assert.Equal(t, 2, stats.UniqueChunks)
	assert.Equal(t, 1, stats.DuplicateChunks)

	decoded, err := Decompress(out)
	require.NoError(t, err)
	assert.Equal(t, src, decoded)
}

func TestCompressDecompressRoundTripVariable(t *testing.T) {
	// 308000 bytes: more than the 4*64 KiB maximum variable chunk.
	src := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 7000)
	out, stats := Compress(src, config.DedupVariable, config.DefaultDedupChunk, config.DedupHashSHA1)
	assert.Greater(t, stats.TotalChunks, 1)

	decoded, err := Decompress(out)
	require.NoError(t, err)
	assert.Equal(t, src, decoded)
}

func TestHashKinds(t *testing.T) {
	src := bytes.Repeat([]byte("payload-"), 500)
	for _, kind := range []config.DedupHash{config.DedupHashSHA1, config.DedupHashMD5, config.DedupHashCRC32, config.DedupHashXXH64} {
		out, _ := Compress(src, config.DedupFixed, 64, kind)
		decoded, err := Decompress(out)
		require.NoError(t, err)
		assert.Equal(t, src, decoded)
	}
}

func TestEmptyInput(t *testing.T) {
	out, stats := Compress(nil, config.DedupFixed, 64, config.DedupHashSHA1)
	assert.Equal(t, 0, stats.TotalChunks)
	decoded, err := Decompress(out)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestDecompressRejectsBadMagic(t *testing.T) {
	_, err := Decompress([]byte("not a dedup stream at all"))
	assert.Error(t, err)
}

func TestSmartModeAliasesVariable(t *testing.T) {
	src := bytes.Repeat([]byte("variable content boundary test "), 1000)
	outVariable, statsVariable := Compress(src, config.DedupVariable, config.DefaultDedupChunk, config.DedupHashSHA1)
	outSmart, statsSmart := Compress(src, config.DedupSmart, config.DefaultDedupChunk, config.DedupHashSHA1)
	assert.Equal(t, statsVariable.TotalChunks, statsSmart.TotalChunks)
	assert.Equal(t, outVariable, outSmart)
}
