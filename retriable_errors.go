// +build !plan9

package httpbind

import (
	"syscall"
)

// Errnos which show the connection is dead and a new attempt might
// work.  These don't exist on plan9 hence the build tag.
var retriableSyscallErrors = []error{
	syscall.EPIPE,
	syscall.ETIMEDOUT,
	syscall.ECONNREFUSED,
	syscall.EHOSTDOWN,
	syscall.EHOSTUNREACH,
	syscall.ECONNABORTED,
	syscall.EAGAIN,
	syscall.EWOULDBLOCK,
	syscall.ECONNRESET,
}

func init() {
	retriableErrors = append(retriableErrors, retriableSyscallErrors...)
}
