package wire

import (
	"fmt"

	"github.com/bft-labs/dmxemu/internal/domain"
)

// Phase identifies which part of a frame the reader was working on.
type Phase int

const (
	// PhaseLength means the reader is waiting for the 4-byte length prefix.
	PhaseLength Phase = iota
	// PhaseBody means the length is known and body bytes are being read.
	PhaseBody
)

// String returns a human-readable representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseLength:
		return "awaiting_length"
	case PhaseBody:
		return "awaiting_body"
	default:
		return "unknown"
	}
}

// FrameError describes a failed frame read with enough detail to diagnose a
// misbehaving client without looking at the payload.
type FrameError struct {
	Phase Phase

	// Declared is the decoded length prefix. Zero while in PhaseLength.
	Declared uint32

	// Received counts the bytes of the current phase that did arrive.
	Received int

	// Max is the maximum frame size in force.
	Max int

	// Err is a domain sentinel, or the underlying I/O error.
	Err error
}

func (e *FrameError) Error() string {
	switch e.Phase {
	case PhaseBody:
		return fmt.Sprintf("wire: %s: %v (declared %d, received %d, max %d)",
			e.Phase, e.Err, e.Declared, e.Received, e.Max)
	default:
		if e.Declared > 0 || e.Err == domain.ErrEmptyFrame {
			return fmt.Sprintf("wire: %s: %v (declared %d, max %d)", e.Phase, e.Err, e.Declared, e.Max)
		}
		return fmt.Sprintf("wire: %s: %v (received %d of %d header bytes)",
			e.Phase, e.Err, e.Received, HeaderSize)
	}
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// closedError marks an I/O error that arrived together with end of stream so
// that errors.Is matches both domain.ErrConnectionClosed and the cause.
type closedError struct {
	cause error
}

func (e *closedError) Error() string {
	return fmt.Sprintf("%v: %v", domain.ErrConnectionClosed, e.cause)
}

func (e *closedError) Unwrap() []error {
	return []error{domain.ErrConnectionClosed, e.cause}
}
