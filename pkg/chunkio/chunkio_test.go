package chunkio

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xgaming6285/filecompressor/pkg/checksum"
)

func TestReadWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.bin")
	src := bytes.Repeat([]byte("chunked io payload "), 10000)
	require.NoError(t, os.WriteFile(path, src, 0o644))

	r, err := Open(path, 4096)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, int64(len(src)), r.Size())

	var got []byte
	for {
		chunk, err := r.NextChunk()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, chunk...)
	}
	assert.Equal(t, src, got)
}

func TestFramedWriteRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.bin")

	w, err := Create(path, 4096)
	require.NoError(t, err)
	w.SetFraming(checksum.CRC32)
	records := [][]byte{[]byte("first"), []byte("second record"), []byte("third")}
	for _, rec := range records {
		_, err := w.Write(rec)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	fr := NewFrameReader(f, checksum.CRC32)
	var got [][]byte
	for {
		data, ok, err := fr.NextFrame()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		assert.True(t, ok)
		got = append(got, data)
	}
	assert.Equal(t, records, got)
}
