package server

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/bft-labs/dmxemu/internal/domain"
	"github.com/bft-labs/dmxemu/pkg/lifecycle"
)

// DefaultPort is the DMX emulator's conventional listen port.
const DefaultPort = 5555

// Config holds the plain values the server needs. It performs no parsing.
type Config struct {
	// Host is the bind address. "0.0.0.0" or "" accepts on all interfaces.
	Host string

	// Port is the TCP port. Zero picks a free port; see Server.Addr.
	Port int

	// MaxFrameSize is the largest accepted frame body in bytes.
	MaxFrameSize int

	// ReadTimeout closes a connection that sends nothing for this long.
	// Zero or negative disables it.
	ReadTimeout time.Duration

	// ShutdownGrace bounds how long Stop waits for handlers to exit.
	ShutdownGrace time.Duration
}

// DefaultConfig returns a Config with the default address and limits.
func DefaultConfig() Config {
	return Config{
		Host:          "0.0.0.0",
		Port:          DefaultPort,
		MaxFrameSize:  domain.DefaultMaxFrameSize,
		ShutdownGrace: lifecycle.DefaultShutdownGrace,
	}
}

// SetDefaults fills zero values that have a sensible default.
func (c *Config) SetDefaults() {
	if c.MaxFrameSize <= 0 {
		c.MaxFrameSize = domain.DefaultMaxFrameSize
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
	if c.MaxFrameSize <= 0 {
		return fmt.Errorf("%w: max frame size must be positive", domain.ErrInvalidConfig)
	}
	return nil
}

// Address returns the host:port string to bind.
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
