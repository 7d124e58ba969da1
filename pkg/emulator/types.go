package emulator

import (
	"github.com/bft-labs/dmxemu/internal/domain"
	"github.com/bft-labs/dmxemu/internal/monitor"
	"github.com/bft-labs/dmxemu/internal/ports"
	"github.com/bft-labs/dmxemu/internal/server"
	"github.com/bft-labs/dmxemu/pkg/lifecycle"
	"github.com/bft-labs/dmxemu/pkg/log"
)

// Re-exported types so that callers need only this package.
type (
	// Frame is one decoded DMX frame.
	Frame = domain.Frame

	// Frames is the consumer side of the frame buffer.
	Frames = ports.FrameSource

	// FrameStore is a buffer that accepts frames from connections and hands
	// them to a consumer.
	FrameStore = ports.FrameStore

	// Snapshot is the monitor's view of the universe.
	Snapshot = monitor.Snapshot

	// ServerStats holds connection and frame counters.
	ServerStats = server.Stats

	// Logger is the structured logging interface from pkg/log.
	Logger = log.Logger

	// LogField is a structured log field.
	LogField = log.Field

	// State is the lifecycle state of an Emulator.
	State = lifecycle.State
)

const (
	StateStopped  = lifecycle.StateStopped
	StateStarting = lifecycle.StateStarting
	StateRunning  = lifecycle.StateRunning
	StateStopping = lifecycle.StateStopping
	StateCrashed  = lifecycle.StateCrashed
)

// Errors returned by the emulator. Check with errors.Is.
var (
	ErrBind             = domain.ErrBind
	ErrAlreadyRunning   = domain.ErrAlreadyRunning
	ErrNotRunning       = domain.ErrNotRunning
	ErrShutdownTimeout  = domain.ErrShutdownTimeout
	ErrInvalidConfig    = domain.ErrInvalidConfig
	ErrFrameTooLarge    = domain.ErrFrameTooLarge
	ErrEmptyFrame       = domain.ErrEmptyFrame
	ErrConnectionClosed = domain.ErrConnectionClosed
)
