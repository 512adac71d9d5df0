package readers

import (
	"io"
	"sync"

	"github.com/pkg/errors"
)

// A RepeatableReader implements the io.ReadSeeker interface.  It
// remembers everything read from the underlying Reader so earlier
// parts of the stream can be seeked back to and read again.
//
// This is used to make request bodies rewindable so a request can be
// retried after a low level failure part way through sending it.
type RepeatableReader struct {
	mu  sync.Mutex // protect against concurrent use
	src io.Reader  // where new data comes from
	off int64      // current read position
	buf []byte     // already read data
}

var _ io.ReadSeeker = (*RepeatableReader)(nil)

// Seek implements the io.Seeker interface.
//
// Only data which has already been read can be seeked to.  Seeking
// past it returns the largest usable offset along with a
// "readers.RepeatableReader.Seek: offset is unavailable" error.
func (r *RepeatableReader) Seek(offset int64, whence int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var abs int64
	cached := int64(len(r.buf))
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = r.off + offset
	case io.SeekEnd:
		abs = cached + offset
	default:
		return 0, errors.New("readers.RepeatableReader.Seek: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("readers.RepeatableReader.Seek: negative position")
	}
	if abs > cached {
		return offset - (abs - cached), errors.New("readers.RepeatableReader.Seek: offset is unavailable")
	}
	r.off = abs
	return abs, nil
}

// Read data at the current position, from the cache if it was read
// before or from the underlying Reader if not.
func (r *RepeatableReader) Read(b []byte) (n int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.off == int64(len(r.buf)) {
		n, err = r.src.Read(b)
		if n > 0 {
			r.buf = append(r.buf, b[:n]...)
		}
	} else {
		n = copy(b, r.buf[r.off:])
	}
	r.off += int64(n)
	return n, err
}

// NewRepeatableReader wraps r so it can be reread
func NewRepeatableReader(r io.Reader) *RepeatableReader {
	return &RepeatableReader{src: r}
}

// NewRepeatableReaderSized is like NewRepeatableReader but
// preallocates a cache of size bytes.
func NewRepeatableReaderSized(r io.Reader, size int) *RepeatableReader {
	return &RepeatableReader{
		src: r,
		buf: make([]byte, 0, size),
	}
}

// NewRepeatableLimitReader is like NewRepeatableReaderSized but also
// limits reading to the first size bytes of r.
func NewRepeatableLimitReader(r io.Reader, size int) *RepeatableReader {
	return NewRepeatableReaderSized(io.LimitReader(r, int64(size)), size)
}

// NewRepeatableReaderBuffer is like NewRepeatableReader but uses the
// buffer passed in as the cache.
func NewRepeatableReaderBuffer(r io.Reader, buf []byte) *RepeatableReader {
	return &RepeatableReader{
		src: r,
		buf: buf[:0],
	}
}

// NewRepeatableLimitReaderBuffer is like NewRepeatableReaderBuffer
// but also limits reading to the first size bytes of r.
func NewRepeatableLimitReaderBuffer(r io.Reader, buf []byte, size int64) *RepeatableReader {
	return NewRepeatableReaderBuffer(io.LimitReader(r, size), buf)
}
