package cliconfig

import (
	"os"
	"time"
)

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "DMXEMU_"

// ApplyEnvConfig applies configuration from environment variables (DMXEMU_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)
	env := func(name string) string { return os.Getenv(EnvPrefix + name) }

	s.setString("host", env("HOST"), &cfg.Host)
	s.setString("buffer-order", env("BUFFER_ORDER"), &cfg.BufferOrder)
	s.setString("buffer-overflow", env("BUFFER_OVERFLOW"), &cfg.BufferOverflow)
	s.setString("log-level", env("LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-file", env("LOG_FILE"), &cfg.LogFile)

	if err := s.setIntFromString("port", env("PORT"), &cfg.Port); err != nil {
		return err
	}
	if err := s.setIntFromString("num-channels", env("NUM_CHANNELS"), &cfg.NumChannels); err != nil {
		return err
	}
	if err := s.setIntFromString("log-backups", env("LOG_BACKUPS"), &cfg.LogBackups); err != nil {
		return err
	}
	if err := s.setIntFromString("buffer-capacity", env("BUFFER_CAPACITY"), &cfg.BufferCapacity); err != nil {
		return err
	}

	if err := s.setDuration("poll", env("POLLING_INTERVAL"), time.Millisecond, &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("read-timeout", env("READ_TIMEOUT"), time.Second, &cfg.ReadTimeout); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-grace", env("SHUTDOWN_GRACE"), time.Second, &cfg.ShutdownGrace); err != nil {
		return err
	}

	s.setBoolFromString("log-console", env("LOG_CONSOLE"), &cfg.LogConsole)
	s.setBoolFromString("watch-config", env("WATCH_CONFIG"), &cfg.WatchConfig)

	return nil
}
