package emulator

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/bft-labs/dmxemu/internal/domain"
	"github.com/bft-labs/dmxemu/internal/framebuf"
	"github.com/bft-labs/dmxemu/internal/monitor"
	"github.com/bft-labs/dmxemu/internal/server"
	"github.com/bft-labs/dmxemu/pkg/lifecycle"
	"github.com/bft-labs/dmxemu/pkg/log"
)

// Emulator ties the frame server, the frame buffer and the monitor together.
// Use New to create one, then Start to begin accepting clients.
type Emulator struct {
	config    Config
	opts      options
	logger    log.Logger
	lifecycle *lifecycle.DefaultManager

	store   FrameStore
	server  *server.Server
	monitor *monitor.Monitor
	plugins []Plugin

	mu sync.Mutex
}

// New creates an Emulator in StateStopped.
// Returns an error if configuration is invalid.
func New(cfg Config, opts ...Option) (*Emulator, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validateModuleVersions(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	store := o.store
	if store == nil {
		store = framebuf.New(cfg.bufferOptions()...)
	}

	var mon *monitor.Monitor
	if !o.noMonitor {
		mon = monitor.New(store, cfg.monitorConfig(), logger)
	}

	var emitter lifecycle.EventEmitter
	if o.eventHandler != nil {
		emitter = &eventEmitterWrapper{handler: o.eventHandler}
	}

	return &Emulator{
		config:    cfg,
		opts:      o,
		logger:    logger,
		lifecycle: lifecycle.NewManager(logger, emitter),
		store:     store,
		server:    server.New(cfg.serverConfig(), store, logger),
		monitor:   mon,
		plugins:   o.plugins,
	}, nil
}

// Start binds the listen address and starts the server, the monitor and any
// plugins in the background. It returns once the server is accepting.
// A bind failure leaves the Emulator in StateCrashed and wraps ErrBind.
func (e *Emulator) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := e.lifecycle.TransitionTo(lifecycle.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	e.lifecycle.SetCancel(cancel)

	if err := e.server.Start(runCtx); err != nil {
		cancel()
		_ = e.lifecycle.TransitionTo(lifecycle.StateCrashed, "server start failed")
		return err
	}

	pluginCfg := PluginConfig{
		Addr:        e.server.Addr().String(),
		NumChannels: e.config.NumChannels,
		Logger:      e.logger,
	}
	for i, p := range e.plugins {
		if err := initializePlugin(runCtx, p, pluginCfg); err != nil {
			e.logger.Error("plugin initialization failed",
				log.String("plugin", p.Name()),
				log.Err(err))
			cancel()
			_ = e.server.Stop()
			stopCtx, stopCancel := context.WithTimeout(context.Background(), e.config.ShutdownGrace)
			_ = e.shutdownPlugins(stopCtx, e.plugins[:i])
			stopCancel()
			_ = e.lifecycle.TransitionTo(lifecycle.StateCrashed, "plugin init failed: "+p.Name())
			return err
		}
		e.logger.Info("plugin initialized", log.String("plugin", p.Name()))
	}

	if e.monitor != nil {
		e.lifecycle.AddWorker()
		go func() {
			defer e.lifecycle.WorkerDone()
			_ = e.monitor.Run(runCtx)
		}()
	}

	return e.lifecycle.TransitionTo(lifecycle.StateRunning, "server listening")
}

// Stop closes the listener and all connections, stops the monitor and shuts
// plugins down in reverse order. All of it shares one shutdown grace period;
// Stop returns ErrShutdownTimeout if that runs out, abandoning whatever has
// not finished.
func (e *Emulator) Stop() error {
	e.mu.Lock()
	if !e.lifecycle.CanStop() {
		e.mu.Unlock()
		return domain.ErrNotRunning
	}
	if err := e.lifecycle.TransitionTo(lifecycle.StateStopping, "Stop() called"); err != nil {
		e.mu.Unlock()
		return err
	}
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), e.config.ShutdownGrace)
	defer cancel()

	// The server may already be down if the parent context was cancelled
	// and its own Stop was called; that is not an error here.
	serverErr := e.server.Shutdown(ctx)
	if errors.Is(serverErr, domain.ErrNotRunning) {
		serverErr = nil
	}

	e.lifecycle.Cancel()
	waitErr := e.lifecycle.Wait(ctx)
	pluginErr := e.shutdownPlugins(ctx, e.plugins)

	err := serverErr
	if err == nil {
		err = waitErr
	}
	if err == nil {
		err = pluginErr
	}
	if err != nil {
		_ = e.lifecycle.TransitionTo(lifecycle.StateCrashed, "shutdown timeout")
	} else {
		_ = e.lifecycle.TransitionTo(lifecycle.StateStopped, "graceful shutdown")
	}
	return err
}

// shutdownPlugins shuts plugins down in reverse order. A plugin still running
// when ctx ends is abandoned and ErrShutdownTimeout is returned; failures are
// logged only.
func (e *Emulator) shutdownPlugins(ctx context.Context, plugins []Plugin) error {
	var err error
	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		result := make(chan error, 1)
		go func() { result <- shutdownPlugin(ctx, p) }()

		select {
		case perr := <-result:
			if perr != nil {
				e.logger.Error("plugin shutdown failed",
					log.String("plugin", p.Name()),
					log.Err(perr))
			} else {
				e.logger.Info("plugin shutdown complete", log.String("plugin", p.Name()))
			}
		case <-ctx.Done():
			e.logger.Warn("plugin shutdown abandoned", log.String("plugin", p.Name()))
			err = domain.ErrShutdownTimeout
		}
	}
	return err
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (e *Emulator) Status() State {
	return e.lifecycle.State()
}

// Addr returns the bound listen address, or nil before Start.
func (e *Emulator) Addr() net.Addr {
	return e.server.Addr()
}

// Frames returns the consumer side of the frame buffer. With the monitor
// enabled the caller competes with it for frames.
func (e *Emulator) Frames() Frames {
	return e.store
}

// Snapshot returns the monitor's latest view of the universe, or nil when
// the monitor is disabled.
func (e *Emulator) Snapshot() *Snapshot {
	if e.monitor == nil {
		return nil
	}
	return e.monitor.Snapshot()
}

// Stats returns the server counters.
func (e *Emulator) Stats() ServerStats {
	return e.server.Stats()
}
