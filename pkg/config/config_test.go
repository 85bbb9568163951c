package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFillsDefaults(t *testing.T) {
	cfg, err := Config{}.Resolve()
	require.NoError(t, err)
	assert.Greater(t, cfg.Threads, 0)
	assert.LessOrEqual(t, cfg.Threads, MaxThreads)
	assert.Equal(t, 64*1024, cfg.BufferSize)
	assert.Equal(t, uint32(DefaultBlockSize), cfg.BlockSize)
	assert.Equal(t, int64(DefaultMaxPartSize), cfg.MaxPartSize)
	assert.Equal(t, DefaultDedupChunk, cfg.DedupChunkSize)
}

func TestResolveClampsTinyMaxPartSize(t *testing.T) {
	cfg, err := Config{MaxPartSize: 10}.Resolve()
	require.NoError(t, err)
	assert.Equal(t, int64(MinSplitSize), cfg.MaxPartSize)
}

func TestResolveClampsDedupChunkBounds(t *testing.T) {
	cfg, err := Config{DedupChunkSize: 1}.Resolve()
	require.NoError(t, err)
	assert.Equal(t, MinDedupChunkSize, cfg.DedupChunkSize)

	cfg, err = Config{DedupChunkSize: MaxDedupChunkSize * 2}.Resolve()
	require.NoError(t, err)
	assert.Equal(t, MaxDedupChunkSize, cfg.DedupChunkSize)
}

func TestPresetParams(t *testing.T) {
	assert.Equal(t, 32, PresetSpeed.MaxHuffmanCodeLength())
	assert.Equal(t, 512, PresetSize.MaxHuffmanCodeLength())
	assert.Equal(t, 256, PresetDefault.MaxHuffmanCodeLength())
}
