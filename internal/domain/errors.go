package domain

import "errors"

// Domain errors represent error conditions in the dmxemu domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrBind is returned when the listening socket cannot be bound.
	// It is fatal: the server never starts accepting.
	ErrBind = errors.New("dmxemu: bind failed")

	// ErrFrameTooLarge is returned when a declared frame length exceeds the
	// configured maximum. The body is not consumed.
	ErrFrameTooLarge = errors.New("dmxemu: frame too large")

	// ErrEmptyFrame is returned when a client declares a zero-length frame.
	ErrEmptyFrame = errors.New("dmxemu: empty frame")

	// ErrConnectionClosed is returned when the peer closes the stream,
	// including in the middle of a frame.
	ErrConnectionClosed = errors.New("dmxemu: connection closed")

	// ErrAlreadyRunning is returned when Start() is called on a running instance.
	ErrAlreadyRunning = errors.New("dmxemu: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped instance.
	ErrNotRunning = errors.New("dmxemu: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("dmxemu: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("dmxemu: invalid configuration")
)

// IsProtocolViolation reports whether err means the client broke the framing
// contract, as opposed to simply going away.
func IsProtocolViolation(err error) bool {
	return errors.Is(err, ErrFrameTooLarge) || errors.Is(err, ErrEmptyFrame)
}
