package split

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xgaming6285/filecompressor/pkg/checksum"
	"github.com/xgaming6285/filecompressor/pkg/codec"
	"github.com/xgaming6285/filecompressor/pkg/config"
	"github.com/xgaming6285/filecompressor/pkg/fcerr"
	"github.com/xgaming6285/filecompressor/pkg/rle"
)

func rlePrimitive() codec.Primitive {
	return codec.Primitive{ID: codec.RLE, Compress: rle.Compress, Decompress: rle.Decompress}
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "archive")
	src := bytes.Repeat([]byte("abcdefgh"), 200000) // several MiB, forces multiple parts

	warnings, err := Compress(base, src, rlePrimitive(), config.MinSplitSize, checksum.CRC32, 0)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	out, err := Decompress(base, rlePrimitive(), 0)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestMaxPartSizeClampedWithWarning(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "archive")
	src := []byte("small payload")

	warnings, err := Compress(base, src, rlePrimitive(), 100, checksum.CRC32, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, warnings)

	out, err := Decompress(base, rlePrimitive(), 0)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestMissingPartIsReported(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "archive")
	src := bytes.Repeat([]byte("z"), int(config.MinSplitSize*2+10))

	_, err := Compress(base, src, rlePrimitive(), config.MinSplitSize, checksum.CRC32, 0)
	require.NoError(t, err)

	require.NoError(t, os.Remove(PartPath(base, 2)))

	_, err = Decompress(base, rlePrimitive(), 0)
	require.Error(t, err)
	assert.True(t, fcerr.Is(err, fcerr.ContainerMissingPart))
}
