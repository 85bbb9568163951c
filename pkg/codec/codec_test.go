package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xgaming6285/filecompressor/pkg/config"
)

func TestRegistryRoundTripsAllPrimitives(t *testing.T) {
	registry := Registry(config.Config{Preset: config.PresetDefault})
	src := bytes.Repeat([]byte("registry roundtrip "), 200)

	for id, prim := range registry {
		out := prim.Compress(src)
		decoded, err := prim.Decompress(out)
		require.NoError(t, err, "codec %s", id)
		assert.Equal(t, src, decoded, "codec %s", id)
	}
}

func TestIDString(t *testing.T) {
	assert.Equal(t, "huffman", Huffman.String())
	assert.Equal(t, "rle", RLE.String())
	assert.Equal(t, "lz77", LZ77.String())
}
