package framebuf

import (
	"fmt"
	"strings"
)

// DefaultCapacity is the number of frames held before the overflow policy
// applies. At the default 30ms polling interval this is about half a minute
// of backlog from a single client sending every frame period.
const DefaultCapacity = 1024

// Order selects which pending frame Pop returns.
type Order int

const (
	// FIFO returns the oldest pending frame.
	FIFO Order = iota
	// LIFO returns the newest pending frame.
	LIFO
)

// String returns the configuration spelling of the order.
func (o Order) String() string {
	switch o {
	case FIFO:
		return "fifo"
	case LIFO:
		return "lifo"
	default:
		return "unknown"
	}
}

// ParseOrder parses "fifo" or "lifo" (case-insensitive).
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fifo", "queue":
		return FIFO, nil
	case "lifo", "stack":
		return LIFO, nil
	default:
		return FIFO, fmt.Errorf("unknown buffer order %q (want fifo or lifo)", s)
	}
}

// Overflow selects what happens when a bounded buffer is full.
type Overflow int

const (
	// DropOldest evicts the oldest stored frame.
	DropOldest Overflow = iota
	// DropNewest discards the frame being pushed.
	DropNewest
)

// String returns the configuration spelling of the policy.
func (o Overflow) String() string {
	switch o {
	case DropOldest:
		return "drop-oldest"
	case DropNewest:
		return "drop-newest"
	default:
		return "unknown"
	}
}

// ParseOverflow parses "drop-oldest" or "drop-newest" (case-insensitive).
func ParseOverflow(s string) (Overflow, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "drop-oldest", "drop_oldest", "oldest":
		return DropOldest, nil
	case "drop-newest", "drop_newest", "newest":
		return DropNewest, nil
	default:
		return DropOldest, fmt.Errorf("unknown overflow policy %q (want drop-oldest or drop-newest)", s)
	}
}

// Option configures a Buffer.
type Option func(*options)

type options struct {
	order    Order
	capacity int
	overflow Overflow
}

func defaultOptions() options {
	return options{
		order:    FIFO,
		capacity: DefaultCapacity,
		overflow: DropOldest,
	}
}

// WithOrder sets the pop order.
func WithOrder(o Order) Option {
	return func(opts *options) {
		opts.order = o
	}
}

// WithCapacity bounds the buffer to n frames. Zero or negative means unbounded.
func WithCapacity(n int) Option {
	return func(opts *options) {
		if n < 0 {
			n = 0
		}
		opts.capacity = n
	}
}

// WithOverflow sets the policy applied when a bounded buffer is full.
func WithOverflow(o Overflow) Option {
	return func(opts *options) {
		opts.overflow = o
	}
}
