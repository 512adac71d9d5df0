package readers

import (
	"io"

	"github.com/pkg/errors"
)

// NoSeeker adapts an io.Reader into an io.ReadSeeker where Seek
// always fails.  Use it to hand a plain stream to an interface which
// wants seeking it will never actually do.
type NoSeeker struct {
	io.Reader
}

// Seek the stream - returns an error
func (r NoSeeker) Seek(offset int64, whence int) (abs int64, err error) {
	return 0, errors.New("can't Seek")
}
