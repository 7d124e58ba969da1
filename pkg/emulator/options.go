package emulator

import "github.com/bft-labs/dmxemu/pkg/log"

// Option configures optional behavior of an Emulator.
type Option func(*options)

type options struct {
	logger       log.Logger
	eventHandler EventHandler
	store        FrameStore
	plugins      []Plugin
	noMonitor    bool
}

func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler sets a handler for lifecycle events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithFrameStore replaces the built-in frame buffer. The store must be safe
// for concurrent Push and TryTakeFrame.
func WithFrameStore(store FrameStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithoutMonitor disables the built-in consumer so that frames stay in the
// buffer for the caller to take via Emulator.Frames.
func WithoutMonitor() Option {
	return func(o *options) {
		o.noMonitor = true
	}
}

// WithPlugin registers a plugin to be initialized when the Emulator starts.
// Plugins are initialized in registration order and shutdown in reverse order.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}
