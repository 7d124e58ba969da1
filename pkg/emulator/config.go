package emulator

import (
	"fmt"
	"time"

	"github.com/bft-labs/dmxemu/internal/domain"
	"github.com/bft-labs/dmxemu/internal/framebuf"
	"github.com/bft-labs/dmxemu/internal/monitor"
	"github.com/bft-labs/dmxemu/internal/server"
	"github.com/bft-labs/dmxemu/pkg/lifecycle"
)

// Order selects which pending frame is taken first.
type Order = framebuf.Order

// Overflow selects what a full frame buffer discards.
type Overflow = framebuf.Overflow

const (
	FIFO = framebuf.FIFO
	LIFO = framebuf.LIFO

	DropOldest = framebuf.DropOldest
	DropNewest = framebuf.DropNewest
)

// Config holds the emulator settings.
type Config struct {
	// Host and Port form the listen address. Port 0 picks a free port.
	Host string
	Port int

	// NumChannels is the universe size and the maximum frame size.
	NumChannels int

	// PollInterval is how often the monitor drains the buffer.
	PollInterval time.Duration

	// ReadTimeout closes idle connections. Zero disables it.
	ReadTimeout time.Duration

	// ShutdownGrace bounds how long Stop waits for goroutines.
	ShutdownGrace time.Duration

	// BufferCapacity bounds pending frames; zero means unbounded.
	BufferCapacity int
	BufferOrder    Order
	BufferOverflow Overflow
}

// DefaultConfig returns a Config with default listen and buffer settings.
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           server.DefaultPort,
		NumChannels:    domain.DefaultMaxFrameSize,
		PollInterval:   monitor.DefaultPollInterval,
		ShutdownGrace:  lifecycle.DefaultShutdownGrace,
		BufferCapacity: framebuf.DefaultCapacity,
		BufferOrder:    FIFO,
		BufferOverflow: DropOldest,
	}
}

// SetDefaults fills zero values that have a sensible default. Port and
// BufferCapacity are left alone since zero is meaningful for both.
func (c *Config) SetDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.NumChannels <= 0 {
		c.NumChannels = domain.DefaultMaxFrameSize
	}
	if c.PollInterval <= 0 {
		c.PollInterval = monitor.DefaultPollInterval
	}
	if c.ShutdownGrace <= 0 {
		c.ShutdownGrace = lifecycle.DefaultShutdownGrace
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", domain.ErrInvalidConfig, c.Port)
	}
	if c.NumChannels <= 0 {
		return fmt.Errorf("%w: num channels must be positive", domain.ErrInvalidConfig)
	}
	if c.BufferCapacity < 0 {
		return fmt.Errorf("%w: buffer capacity must not be negative", domain.ErrInvalidConfig)
	}
	return nil
}

func (c Config) serverConfig() server.Config {
	return server.Config{
		Host:          c.Host,
		Port:          c.Port,
		MaxFrameSize:  c.NumChannels,
		ReadTimeout:   c.ReadTimeout,
		ShutdownGrace: c.ShutdownGrace,
	}
}

func (c Config) monitorConfig() monitor.Config {
	return monitor.Config{
		NumChannels:  c.NumChannels,
		PollInterval: c.PollInterval,
	}
}

func (c Config) bufferOptions() []framebuf.Option {
	return []framebuf.Option{
		framebuf.WithCapacity(c.BufferCapacity),
		framebuf.WithOrder(c.BufferOrder),
		framebuf.WithOverflow(c.BufferOverflow),
	}
}
