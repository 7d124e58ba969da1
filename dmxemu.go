// Package dmxemu runs a DMX frame emulator from CLI-style configuration.
//
// Example usage:
//
//	cfg := dmxemu.DefaultConfig()
//	cfg.Port = 5555
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	if err := dmxemu.Run(ctx, cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// For finer control embed github.com/bft-labs/dmxemu/pkg/emulator directly.
package dmxemu

import (
	"context"
	"fmt"

	"github.com/bft-labs/dmxemu/internal/cliconfig"
	"github.com/bft-labs/dmxemu/internal/framebuf"
	"github.com/bft-labs/dmxemu/pkg/emulator"
)

// Config holds the configuration for the emulator process.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = cliconfig.Config

// DefaultConfig returns a Config with default listen and buffer settings.
func DefaultConfig() Config {
	return cliconfig.DefaultConfig()
}

// EmulatorConfig validates cfg and converts it to an emulator.Config.
func EmulatorConfig(cfg Config) (emulator.Config, error) {
	if err := cfg.Validate(); err != nil {
		return emulator.Config{}, err
	}
	order, err := framebuf.ParseOrder(cfg.BufferOrder)
	if err != nil {
		return emulator.Config{}, err
	}
	overflow, err := framebuf.ParseOverflow(cfg.BufferOverflow)
	if err != nil {
		return emulator.Config{}, err
	}
	return emulator.Config{
		Host:           cfg.Host,
		Port:           cfg.Port,
		NumChannels:    cfg.NumChannels,
		PollInterval:   cfg.PollInterval,
		ReadTimeout:    cfg.ReadTimeout,
		ShutdownGrace:  cfg.ShutdownGrace,
		BufferCapacity: cfg.BufferCapacity,
		BufferOrder:    order,
		BufferOverflow: overflow,
	}, nil
}

// Run starts an emulator and blocks until ctx is cancelled, then stops it.
// It returns a bind or configuration error immediately, and otherwise the
// result of the graceful shutdown.
func Run(ctx context.Context, cfg Config, opts ...emulator.Option) error {
	ec, err := EmulatorConfig(cfg)
	if err != nil {
		return err
	}
	emu, err := emulator.New(ec, opts...)
	if err != nil {
		return fmt.Errorf("create emulator: %w", err)
	}
	if err := emu.Start(ctx); err != nil {
		return fmt.Errorf("start emulator: %w", err)
	}

	<-ctx.Done()

	if err := emu.Stop(); err != nil {
		return fmt.Errorf("stop emulator: %w", err)
	}
	return nil
}
