package readers

import (
	"context"
	"io"
)

// NewContextReader wraps r so that reading stops with the context's
// error once ctx is cancelled.
//
// The context is checked before each Read so a Read already in
// progress is not interrupted.
func NewContextReader(ctx context.Context, r io.Reader) io.Reader {
	return &contextReader{ctx: ctx, r: r}
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

// Read as per io.Reader
func (cr *contextReader) Read(p []byte) (n int, err error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
