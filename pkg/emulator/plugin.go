package emulator

import (
	"context"
	"fmt"
)

// PluginConfig is handed to each plugin on Initialize.
type PluginConfig struct {
	// Addr is the address the server is bound to.
	Addr string

	// NumChannels is the configured universe size.
	NumChannels int

	Logger Logger
}

// Plugin extends an Emulator with optional behavior that starts and stops
// with it.
type Plugin interface {
	Name() string

	// Initialize is called from Start after the server is listening. ctx is
	// cancelled when the emulator stops.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown is called from Stop after the server has stopped.
	Shutdown(ctx context.Context) error
}

// BasePlugin provides no-op implementations for embedding.
type BasePlugin struct{}

// Name returns "base".
func (BasePlugin) Name() string { return "base" }

// Initialize does nothing.
func (BasePlugin) Initialize(context.Context, PluginConfig) error { return nil }

// Shutdown does nothing.
func (BasePlugin) Shutdown(context.Context) error { return nil }

func initializePlugin(ctx context.Context, p Plugin, cfg PluginConfig) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plugin %s panicked during initialize: %v", p.Name(), r)
		}
	}()
	return p.Initialize(ctx, cfg)
}

func shutdownPlugin(ctx context.Context, p Plugin) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plugin %s panicked during shutdown: %v", p.Name(), r)
		}
	}()
	return p.Shutdown(ctx)
}
