// Package chunkio streams files of arbitrary size through fixed-size
// buffers (spec §4.1), with an optional length-prefixed, checksummed
// framing on top. It is the leaf I/O layer the orchestrator and the
// split-archive wrapper read and write every file through, the same
// role bufio.Reader/Writer play in the teacher's NCA/PFS0 readers and
// writers. The progressive container is the one exception: it needs
// io.Seeker/io.ReaderAt for header rewrites and random block access,
// which this package's sequential Reader/Writer don't provide, so it
// talks to os.File directly.
package chunkio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"os"

	"github.com/xgaming6285/filecompressor/pkg/checksum"
	"github.com/xgaming6285/filecompressor/pkg/fcerr"
)

// DefaultChunkSize matches the spec's recommended minimum I/O buffer.
const DefaultChunkSize = 64 * 1024

// Reader pulls up-to-chunkSize slices from a file, advancing position
// monotonically. It is safe to call NextChunk after EOS repeatedly; it
// keeps returning io.EOF.
type Reader struct {
	f         *os.File
	br        *bufio.Reader
	chunkSize int
	pos       int64
	size      int64
	eof       bool
}

// Open opens path for chunked reading. Fails with fcerr.IoOpen if the
// file cannot be opened or stat'd.
func Open(path string, chunkSize int) (*Reader, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fcerr.New(fcerr.IoOpen, "chunkio.Open", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fcerr.New(fcerr.IoOpen, "chunkio.Open", path, err)
	}
	return &Reader{
		f:         f,
		br:        bufio.NewReaderSize(f, chunkSize),
		chunkSize: chunkSize,
		size:      info.Size(),
	}, nil
}

// Size returns the file size recorded at Open time.
func (r *Reader) Size() int64 { return r.size }

// Pos returns the current logical read position.
func (r *Reader) Pos() int64 { return r.pos }

// NextChunk returns the next up-to-chunkSize bytes. After the last byte
// it returns (nil, io.EOF); subsequent calls keep returning io.EOF.
func (r *Reader) NextChunk() ([]byte, error) {
	if r.eof {
		return nil, io.EOF
	}
	buf := make([]byte, r.chunkSize)
	n, err := io.ReadFull(r.br, buf)
	if n > 0 {
		r.pos += int64(n)
	}
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		r.eof = true
		if n == 0 {
			return nil, io.EOF
		}
		return buf[:n], nil
	}
	if err != nil {
		return nil, fcerr.New(fcerr.IoRead, "chunkio.NextChunk", "", err)
	}
	return buf[:n], nil
}

// Read satisfies io.Reader by delegating to the chunk-sized buffered
// reader underneath, so a Reader can stand in anywhere an io.Reader is
// expected (e.g. split's per-part header/body reads) without giving up
// the chunkSize buffering.
func (r *Reader) Read(p []byte) (int, error) { return r.br.Read(p) }

// Close releases the underlying file.
func (r *Reader) Close() error { return r.f.Close() }

// Writer accumulates writes in a buffer, flushing whenever the buffer
// exceeds chunkSize, and closes on Close. If a non-None checksum Kind is
// set, each Write is wrapped in a length-prefixed, checksummed record
// (the "framed variant" of spec §4.1).
type Writer struct {
	f         *os.File
	bw        *bufio.Writer
	buf       []byte
	chunkSize int
	frameKind checksum.Kind
}

// Create creates/truncates path for chunked writing.
func Create(path string, chunkSize int) (*Writer, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fcerr.New(fcerr.IoOpen, "chunkio.Create", path, err)
	}
	return &Writer{
		f:         f,
		bw:        bufio.NewWriterSize(f, chunkSize),
		chunkSize: chunkSize,
	}, nil
}

// SetFraming enables the length-prefixed checksum framing for every
// subsequent Write. Kind == checksum.None disables it again.
func (w *Writer) SetFraming(kind checksum.Kind) { w.frameKind = kind }

// Write buffers p, flushing to the underlying file whenever the
// accumulated buffer exceeds chunkSize. When framing is enabled, p is
// wrapped as {tag, checksum_payload, data_length u32, data}.
func (w *Writer) Write(p []byte) (int, error) {
	if w.frameKind != checksum.None {
		return w.writeFramed(p)
	}
	w.buf = append(w.buf, p...)
	if len(w.buf) > w.chunkSize {
		if err := w.flush(); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

func (w *Writer) writeFramed(p []byte) (int, error) {
	sum := checksum.Compute(w.frameKind, p)
	rec := sum.WriteTo(nil)
	lenBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBuf, uint32(len(p)))
	rec = append(rec, lenBuf...)
	rec = append(rec, p...)
	w.buf = append(w.buf, rec...)
	if len(w.buf) > w.chunkSize {
		if err := w.flush(); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

func (w *Writer) flush() error {
	if len(w.buf) == 0 {
		return nil
	}
	if _, err := w.bw.Write(w.buf); err != nil {
		return fcerr.New(fcerr.IoWrite, "chunkio.flush", "", err)
	}
	w.buf = w.buf[:0]
	return nil
}

// Close flushes any buffered bytes and closes the underlying file.
func (w *Writer) Close() error {
	if err := w.flush(); err != nil {
		return err
	}
	if err := w.bw.Flush(); err != nil {
		return fcerr.New(fcerr.IoWrite, "chunkio.Close", "", err)
	}
	return w.f.Close()
}

// FrameReader reads the inverse of Writer's framed records, verifying
// the checksum after reading data_length bytes. A mismatch is reported
// via ok=false but is not an error the caller is forced to abort on —
// the caller decides (spec §4.1: "reports (but does not repair) a
// mismatch; the caller decides whether to abort").
type FrameReader struct {
	r    io.Reader
	kind checksum.Kind
}

// NewFrameReader wraps r to read records framed by Writer. The kind is
// recorded but NextFrame takes each record's checksum kind from its own
// tag byte; unframed raw bytes are not supported here (use Reader).
func NewFrameReader(r io.Reader, kind checksum.Kind) *FrameReader {
	return &FrameReader{r: r, kind: kind}
}

// NextFrame reads one framed record, returning its payload and whether
// the embedded checksum matched.
func (fr *FrameReader) NextFrame() (data []byte, ok bool, err error) {
	tagBuf := make([]byte, 1)
	if _, err := io.ReadFull(fr.r, tagBuf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, false, io.EOF
		}
		return nil, false, fcerr.New(fcerr.IoRead, "chunkio.NextFrame", "tag", err)
	}
	kind := checksum.Kind(tagBuf[0])
	width := kind.Width()
	payload := make([]byte, width)
	if width > 0 {
		if _, err := io.ReadFull(fr.r, payload); err != nil {
			return nil, false, fcerr.New(fcerr.IoRead, "chunkio.NextFrame", "checksum payload", err)
		}
	}
	lenBuf := make([]byte, 4)
	if _, err := io.ReadFull(fr.r, lenBuf); err != nil {
		return nil, false, fcerr.New(fcerr.IoRead, "chunkio.NextFrame", "data length", err)
	}
	dataLen := binary.BigEndian.Uint32(lenBuf)
	data = make([]byte, dataLen)
	if dataLen > 0 {
		if _, err := io.ReadFull(fr.r, data); err != nil {
			return nil, false, fcerr.New(fcerr.IoRead, "chunkio.NextFrame", "data", err)
		}
	}
	ok = checksum.Equal(checksum.Value{Kind: kind, Payload: payload}, data)
	return data, ok, nil
}
