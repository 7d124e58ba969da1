package server

import "sync/atomic"

// Stats is a point-in-time copy of the server counters.
type Stats struct {
	Accepted           uint64
	Closed             uint64
	Frames             uint64
	Bytes              uint64
	ProtocolViolations uint64
	AcceptErrors       uint64
}

// Active returns the number of connections currently being handled.
func (s Stats) Active() uint64 {
	return s.Accepted - s.Closed
}

type counters struct {
	accepted     atomic.Uint64
	closed       atomic.Uint64
	frames       atomic.Uint64
	bytes        atomic.Uint64
	violations   atomic.Uint64
	acceptErrors atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Accepted:           c.accepted.Load(),
		Closed:             c.closed.Load(),
		Frames:             c.frames.Load(),
		Bytes:              c.bytes.Load(),
		ProtocolViolations: c.violations.Load(),
		AcceptErrors:       c.acceptErrors.Load(),
	}
}
