package fcerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndIs(t *testing.T) {
	err := New(CodecCorrupt, "huffman.Decompress", "bad tree", nil)
	assert.True(t, Is(err, CodecCorrupt))
	assert.False(t, Is(err, IoRead))
}

func TestWrappedErrorUnwraps(t *testing.T) {
	inner := errors.New("disk full")
	err := New(IoWrite, "chunkio.flush", "", inner)
	assert.ErrorIs(t, err, inner)
}

func TestAsExtractsBlockID(t *testing.T) {
	err := NewBlock(ContainerChecksumMismatch, "progressive.DecodeBlock", "", 7, nil)
	var fe *Error
	require.True(t, As(err, &fe))
	assert.Equal(t, int64(7), fe.BlockID)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "Codec::Corrupt", CodecCorrupt.String())
	assert.Equal(t, "Container::MissingPart", ContainerMissingPart.String())
}
