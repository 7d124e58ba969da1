package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config in a TOML friendly shape. Durations may be given
// as strings ("30ms") or bare integers, so they decode into any. Integer and
// bool settings are pointers so that an explicit zero or false in the file is
// distinguishable from an omitted key.
type FileConfig struct {
	Host            string `toml:"host"`
	Port            *int   `toml:"port"`
	NumChannels     *int   `toml:"num_channels"`
	PollingInterval any    `toml:"polling_interval"`
	ReadTimeout     any    `toml:"read_timeout"`
	ShutdownGrace   any    `toml:"shutdown_grace"`
	BufferCapacity  *int   `toml:"buffer_capacity"`
	BufferOrder     string `toml:"buffer_order"`
	BufferOverflow  string `toml:"buffer_overflow"`
	LogLevel        string `toml:"log_level"`
	LogConsole      *bool  `toml:"log_console"`
	LogFile         string `toml:"log_file"`
	LogBackups      *int   `toml:"log_backups"`
	WatchConfig     *bool  `toml:"watch_config"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.dmxemu/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".dmxemu", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("host", fc.Host, &cfg.Host)
	s.setString("buffer-order", fc.BufferOrder, &cfg.BufferOrder)
	s.setString("buffer-overflow", fc.BufferOverflow, &cfg.BufferOverflow)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("log-file", fc.LogFile, &cfg.LogFile)

	s.setInt("port", fc.Port, &cfg.Port)
	s.setInt("num-channels", fc.NumChannels, &cfg.NumChannels)
	s.setInt("buffer-capacity", fc.BufferCapacity, &cfg.BufferCapacity)
	s.setInt("log-backups", fc.LogBackups, &cfg.LogBackups)

	durations := []struct {
		flag  string
		key   string
		value any
		unit  time.Duration
		dst   *time.Duration
	}{
		{"poll", "polling_interval", fc.PollingInterval, time.Millisecond, &cfg.PollInterval},
		{"read-timeout", "read_timeout", fc.ReadTimeout, time.Second, &cfg.ReadTimeout},
		{"shutdown-grace", "shutdown_grace", fc.ShutdownGrace, time.Second, &cfg.ShutdownGrace},
	}
	for _, d := range durations {
		text, err := durationText(d.key, d.value)
		if err != nil {
			return err
		}
		if err := s.setDuration(d.flag, text, d.unit, d.dst); err != nil {
			return err
		}
	}

	s.setBool("log-console", fc.LogConsole, &cfg.LogConsole)
	s.setBool("watch-config", fc.WatchConfig, &cfg.WatchConfig)

	return nil
}

// durationText normalizes a decoded TOML duration value to the string form
// accepted by ParseDuration.
func durationText(key string, v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	default:
		return "", fmt.Errorf("parse %s: unsupported value %v (%T)", key, v, v)
	}
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
