package checksum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeAndEqual(t *testing.T) {
	data := []byte("the quick brown fox")
	for _, kind := range []Kind{CRC32, MD5, SHA256} {
		v := Compute(kind, data)
		assert.Equal(t, kind.Width(), len(v.Payload))
		assert.True(t, Equal(v, data))
		assert.False(t, Equal(v, []byte("different data")))
	}
}

func TestNoneAlwaysEqual(t *testing.T) {
	v := Value{Kind: None}
	assert.True(t, Equal(v, []byte("anything")))
}

func TestWriteToAndReadRoundTrip(t *testing.T) {
	for _, kind := range []Kind{None, CRC32, MD5, SHA256} {
		v := Compute(kind, []byte("payload"))
		buf := v.WriteTo(nil)
		got, n, err := Read(buf)
		require.NoError(t, err)
		assert.Equal(t, len(buf), n)
		assert.Equal(t, v.Kind, got.Kind)
		assert.Equal(t, v.Payload, got.Payload)
	}
}

func TestReadTruncated(t *testing.T) {
	v := Compute(SHA256, []byte("x"))
	buf := v.WriteTo(nil)
	_, _, err := Read(buf[:len(buf)-1])
	assert.Error(t, err)
}

func TestPadTo20(t *testing.T) {
	short := []byte{1, 2, 3, 4}
	padded := PadTo20(short)
	assert.Equal(t, byte(1), padded[0])
	assert.Equal(t, byte(0), padded[19])
}
