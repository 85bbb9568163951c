package orchestrator

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xgaming6285/filecompressor/pkg/checksum"
	"github.com/xgaming6285/filecompressor/pkg/codec"
	"github.com/xgaming6285/filecompressor/pkg/config"
)

func writeTemp(t *testing.T, dir string, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestPlainRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := bytes.Repeat([]byte("roundtrip payload "), 500)
	in := writeTemp(t, dir, "in.bin", src)
	compressedOut := filepath.Join(dir, "out.bin")
	decompressedOut := filepath.Join(dir, "out.orig")

	_, err := Run(context.Background(), Request{
		Compress: true, Codec: codec.Huffman,
		InputPath: in, OutputPath: compressedOut,
		Config: config.Config{},
	})
	require.NoError(t, err)

	_, err = Run(context.Background(), Request{
		Compress: false, Codec: codec.Huffman,
		InputPath: compressedOut, OutputPath: decompressedOut,
		Config: config.Config{},
	})
	require.NoError(t, err)

	got, err := os.ReadFile(decompressedOut)
	require.NoError(t, err)
	assert.Equal(t, src, got)
}

func TestEncryptedRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := []byte("secret payload that must survive encryption")
	in := writeTemp(t, dir, "in.bin", src)
	compressedOut := filepath.Join(dir, "out.bin")
	decompressedOut := filepath.Join(dir, "out.orig")

	cfg := config.Config{EncryptionKey: []byte("topsecret")}
	_, err := Run(context.Background(), Request{Compress: true, Codec: codec.RLE, InputPath: in, OutputPath: compressedOut, Config: cfg})
	require.NoError(t, err)

	_, err = Run(context.Background(), Request{Compress: false, Codec: codec.RLE, InputPath: compressedOut, OutputPath: decompressedOut, Config: cfg})
	require.NoError(t, err)

	got, err := os.ReadFile(decompressedOut)
	require.NoError(t, err)
	assert.Equal(t, src, got)
}

func TestDedupAndLargeFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := bytes.Repeat([]byte("dedup-worker-pool-payload "), 5000)
	in := writeTemp(t, dir, "in.bin", src)
	compressedOut := filepath.Join(dir, "out.bin")
	decompressedOut := filepath.Join(dir, "out.orig")

	cfg := config.Config{Dedup: true, LargeFile: true, Threads: 4}
	res, err := Run(context.Background(), Request{Compress: true, Codec: codec.LZ77, InputPath: in, OutputPath: compressedOut, Config: cfg})
	require.NoError(t, err)
	require.NotNil(t, res.DedupStats)
	require.NotNil(t, res.ParallelStats)

	_, err = Run(context.Background(), Request{Compress: false, Codec: codec.LZ77, InputPath: compressedOut, OutputPath: decompressedOut, Config: cfg})
	require.NoError(t, err)

	got, err := os.ReadFile(decompressedOut)
	require.NoError(t, err)
	assert.Equal(t, src, got)
}

func TestProgressiveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := bytes.Repeat([]byte("progressive container payload "), 3000)
	in := writeTemp(t, dir, "in.bin", src)
	compressedOut := filepath.Join(dir, "out.bin")
	decompressedOut := filepath.Join(dir, "out.orig")

	cfg := config.Config{Progressive: true, BlockSize: 4096, ChecksumKind: checksum.CRC32}
	_, err := Run(context.Background(), Request{Compress: true, Codec: codec.RLE, InputPath: in, OutputPath: compressedOut, Config: cfg})
	require.NoError(t, err)

	_, err = Run(context.Background(), Request{Compress: false, Codec: codec.RLE, InputPath: compressedOut, OutputPath: decompressedOut, Config: cfg})
	require.NoError(t, err)

	got, err := os.ReadFile(decompressedOut)
	require.NoError(t, err)
	assert.Equal(t, src, got)
}

func TestSplitRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := bytes.Repeat([]byte("split archive payload "), 100000)
	in := writeTemp(t, dir, "in.bin", src)
	base := filepath.Join(dir, "archive")
	decompressedOut := filepath.Join(dir, "out.orig")

	cfg := config.Config{Split: true, MaxPartSize: config.MinSplitSize, ChecksumKind: checksum.CRC32}
	_, err := Run(context.Background(), Request{Compress: true, Codec: codec.RLE, InputPath: in, OutputPath: base, Config: cfg})
	require.NoError(t, err)

	_, err = Run(context.Background(), Request{Compress: false, Codec: codec.RLE, InputPath: base, OutputPath: decompressedOut, Config: cfg})
	require.NoError(t, err)

	got, err := os.ReadFile(decompressedOut)
	require.NoError(t, err)
	assert.Equal(t, src, got)
}
