package httpbind

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"syscall"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

// make a plausible network error with the underlying errno
func makeNetErr(errno syscall.Errno) error {
	return &net.OpError{
		Op:     "write",
		Net:    "tcp",
		Source: &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 123},
		Addr:   &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 8080},
		Err: &os.SyscallError{
			Syscall: "write",
			Err:     errno,
		},
	}
}

type timeoutError struct{}

func (e timeoutError) Error() string { return "timeout error" }
func (e timeoutError) Timeout() bool { return true }

type temporaryError struct{}

func (e temporaryError) Error() string   { return "temporary error" }
func (e temporaryError) Temporary() bool { return true }

func TestRetryError(t *testing.T) {
	err := RetryError(io.EOF)
	assert.Equal(t, "EOF", err.Error())
	assert.True(t, IsRetryError(err))

	err = RetryErrorf("I am an error with %d params", 1)
	assert.Equal(t, "I am an error with 1 params", err.Error())
	assert.True(t, IsRetryError(err))

	// a wrapped retry error is still a retry error
	err = errors.Wrap(RetryError(io.EOF), "potato")
	assert.True(t, IsRetryError(err))

	assert.False(t, IsRetryError(nil))
	assert.False(t, IsRetryError(io.EOF))
}

func TestShouldRetry(t *testing.T) {
	for i, test := range []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("potato"), false},
		{io.EOF, true},
		{io.ErrUnexpectedEOF, true},
		{errors.Wrap(io.EOF, "failed to read"), true},
		{makeNetErr(syscall.ECONNREFUSED), true},
		{makeNetErr(syscall.ECONNRESET), true},
		{makeNetErr(syscall.EHOSTUNREACH), true},
		{makeNetErr(syscall.ENOENT), false},
		{&url.Error{Op: "Get", URL: "http://example.com", Err: makeNetErr(syscall.EPIPE)}, true},
		{timeoutError{}, true},
		{temporaryError{}, true},
		{context.DeadlineExceeded, true},
		{context.Canceled, false},
	} {
		got := ShouldRetry(test.err)
		assert.Equal(t, test.want, got, "test %d: %v", i, test.err)
	}
}

func TestShouldRetryHTTP(t *testing.T) {
	retryErrorCodes := []int{429, 500, 502, 503, 504}
	assert.False(t, ShouldRetryHTTP(nil, retryErrorCodes))
	for code, want := range map[int]bool{
		200: false,
		400: false,
		401: false,
		429: true,
		500: true,
		503: true,
		504: true,
	} {
		resp := &http.Response{StatusCode: code}
		assert.Equal(t, want, ShouldRetryHTTP(resp, retryErrorCodes), "code %d", code)
	}
}
