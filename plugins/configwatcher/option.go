package configwatcher

import "github.com/bft-labs/dmxemu/pkg/emulator"

// WithConfigWatcher returns an emulator Option that enables config file
// watching.
//
// Usage:
//
//	emu, err := emulator.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        Path:     "/etc/dmxemu/config.toml",
//	        OnChange: func(fc cliconfig.FileConfig) { ... },
//	    }),
//	)
func WithConfigWatcher(cfg Config) emulator.Option {
	return emulator.WithPlugin(New(cfg))
}
