// Errors and error handling

package httpbind

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"

	"github.com/pkg/errors"
)

// Retry is an optional interface for error as to whether the
// operation should be retried at a high level.
//
// This should be returned from operations which want another go
// regardless of what the error classifier thinks.
type Retry interface {
	error
	Retry() bool
}

// retryError is a type of error
type retryError string

// Error interface
func (r retryError) Error() string {
	return string(r)
}

// Retry interface
func (r retryError) Retry() bool {
	return true
}

// Check interface
var _ Retry = retryError("")

// RetryErrorf makes an error which indicates it would like to be retried
func RetryErrorf(format string, a ...interface{}) error {
	return retryError(fmt.Sprintf(format, a...))
}

// plainRetryError is an error wrapped so it will retry
type plainRetryError struct {
	error
}

// Retry interface
func (err plainRetryError) Retry() bool {
	return true
}

// Check interface
var _ Retry = plainRetryError{(error)(nil)}

// RetryError makes an error which indicates it would like to be retried
func RetryError(err error) error {
	return plainRetryError{err}
}

// IsRetryError returns true if err conforms to the Retry interface
// and calling the Retry method returns true.
func IsRetryError(err error) bool {
	if err == nil {
		return false
	}
	if r, ok := errors.Cause(err).(Retry); ok {
		return r.Retry()
	}
	return false
}

// A list of errors which mean the underlying connection is broken and
// the request is worth trying again
var retriableErrors = []error{
	io.EOF,
	io.ErrUnexpectedEOF,
}

// ShouldRetry looks at an error and tries to work out if retrying the
// operation that caused it would be a good idea. It returns true if
// the error implements Timeout() or Temporary() and it returns true,
// or if the error is one of the retriable low level errors.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}

	// Find root cause if available
	err = errors.Cause(err)

	// Unwrap url.Error, net.OpError and os.SyscallError to get at
	// the underlying error
	for {
		if urlErr, ok := err.(*url.Error); ok {
			err = urlErr.Err
			continue
		}
		if opErr, ok := err.(*net.OpError); ok {
			err = opErr.Err
			continue
		}
		if sysErr, ok := err.(*os.SyscallError); ok {
			err = sysErr.Err
			continue
		}
		break
	}

	// Check if it is a retriable low level error
	for _, retriableErr := range retriableErrors {
		if err == retriableErr {
			return true
		}
	}

	// Check for net error Timeout()
	if x, ok := err.(interface {
		Timeout() bool
	}); ok && x.Timeout() {
		return true
	}

	// Check for net error Temporary()
	if x, ok := err.(interface {
		Temporary() bool
	}); ok && x.Temporary() {
		return true
	}

	return false
}

// ShouldRetryHTTP returns a boolean as to whether this resp deserves
// a retry.  It checks to see if the HTTP response code is in the slice
// retryErrorCodes.
func ShouldRetryHTTP(resp *http.Response, retryErrorCodes []int) bool {
	if resp == nil {
		return false
	}
	for _, e := range retryErrorCodes {
		if resp.StatusCode == e {
			return true
		}
	}
	return false
}
