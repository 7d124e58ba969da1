package monitor

import "time"

// Snapshot is the universe state after a poll. Values is never modified
// after publication and may be read without locking.
type Snapshot struct {
	// Frames counts frames applied since the monitor started.
	Frames uint64

	// Values holds one byte per channel; channel n is Values[n-1].
	Values []byte

	// Marked is the number of leading channels written by the most recent
	// frame. It drops to zero once no frame has arrived for the clear delay.
	Marked int

	// Changed is the number of channels whose value differed from the
	// previous frame.
	Changed int

	// LastLen is the payload length of the most recent frame.
	LastLen int

	// LastLocalPort is the server port the most recent frame arrived on.
	LastLocalPort int

	// LastFrameAt is when the most recent frame was applied.
	LastFrameAt time.Time
}

// Channel returns the value of 1-based channel n.
func (s *Snapshot) Channel(n int) (byte, bool) {
	if n < 1 || n > len(s.Values) {
		return 0, false
	}
	return s.Values[n-1], true
}
