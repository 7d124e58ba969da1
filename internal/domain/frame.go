package domain

// DefaultMaxFrameSize is the largest frame body accepted when nothing else is
// configured: one full DMX-512 universe.
const DefaultMaxFrameSize = 512

// Frame is one decoded snapshot of channel values.
// A frame carries no sequence number or timestamp; ordering exists only
// implicitly through arrival order.
type Frame struct {
	// LocalPort is the server port the frame arrived on. It is an opaque tag
	// and is not used to demultiplex frames.
	LocalPort int

	// Payload holds the channel values, one byte per channel.
	// It must not be modified after the frame is pushed.
	Payload []byte
}

// Len returns the number of channels carried by the frame.
func (f Frame) Len() int {
	return len(f.Payload)
}

// Channel returns the value of the 1-based DMX channel n.
// The second result is false when the frame does not carry that channel.
func (f Frame) Channel(n int) (byte, bool) {
	if n < 1 || n > len(f.Payload) {
		return 0, false
	}
	return f.Payload[n-1], true
}
