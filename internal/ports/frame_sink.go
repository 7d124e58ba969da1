package ports

import "github.com/bft-labs/dmxemu/internal/domain"

// FrameSink accepts frames decoded by connection handlers.
// Implementations must be safe for concurrent use by many handlers and must
// not block the caller beyond brief lock contention.
type FrameSink interface {
	// Push hands over one complete frame. The sink takes ownership of the
	// payload; the caller must not modify it afterwards.
	Push(frame domain.Frame)
}

// FrameSource is the consumer-facing side of the hand-off.
type FrameSource interface {
	// TryTakeFrame removes and returns one frame if any is pending.
	// It never blocks. Frames not taken before newer ones displace them
	// may be lost; there is no replay.
	TryTakeFrame() (domain.Frame, bool)
}

// FrameStore is a sink and a source at once.
type FrameStore interface {
	FrameSink
	FrameSource
}
