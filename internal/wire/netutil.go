package wire

import (
	"errors"
	"syscall"
)

// isConnReset reports errors that mean the peer went away abruptly. They are
// reported as closures rather than I/O failures.
func isConnReset(err error) bool {
	return errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE)
}
