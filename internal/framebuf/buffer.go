package framebuf

import (
	"sync"

	"github.com/gammazero/deque"

	"github.com/bft-labs/dmxemu/internal/domain"
)

// Buffer stores decoded frames until the consumer takes them.
// It is safe for concurrent use. The zero value is not usable; call New.
type Buffer struct {
	order    Order
	capacity int
	overflow Overflow

	mu      sync.Mutex
	frames  deque.Deque[domain.Frame]
	dropped uint64
}

// New creates an empty buffer.
func New(opts ...Option) *Buffer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	b := &Buffer{
		order:    o.order,
		capacity: o.capacity,
		overflow: o.overflow,
	}
	if o.capacity > 0 {
		b.frames.SetBaseCap(o.capacity)
	}
	return b
}

// Push stores a frame. It never blocks beyond lock contention and never
// truncates the payload. When the buffer is bounded and full the overflow
// policy decides which frame is lost.
func (b *Buffer) Push(f domain.Frame) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.capacity > 0 && b.frames.Len() >= b.capacity {
		b.dropped++
		if b.overflow == DropNewest {
			return
		}
		b.frames.PopFront()
	}
	b.frames.PushBack(f)
}

// Pop removes and returns one frame according to the configured order.
// The second result is false when the buffer is empty. Pop never blocks.
func (b *Buffer) Pop() (domain.Frame, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frames.Len() == 0 {
		return domain.Frame{}, false
	}
	if b.order == LIFO {
		return b.frames.PopBack(), true
	}
	return b.frames.PopFront(), true
}

// TryTakeFrame is Pop under the consumer-facing name.
func (b *Buffer) TryTakeFrame() (domain.Frame, bool) {
	return b.Pop()
}

// Len returns the number of pending frames.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frames.Len()
}

// Dropped returns how many frames the overflow policy has discarded.
func (b *Buffer) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// Order returns the configured pop order.
func (b *Buffer) Order() Order { return b.order }

// Capacity returns the configured bound, zero when unbounded.
func (b *Buffer) Capacity() int { return b.capacity }

// Overflow returns the configured overflow policy.
func (b *Buffer) Overflow() Overflow { return b.overflow }
