package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/dmxemu/internal/domain"
	"github.com/bft-labs/dmxemu/internal/framebuf"
	"github.com/bft-labs/dmxemu/internal/logging"
)

// Defaults applied before file, env and flags.
const (
	DefaultHost           = "0.0.0.0"
	DefaultPort           = 5555
	DefaultNumChannels    = domain.DefaultMaxFrameSize
	DefaultPollInterval   = 30 * time.Millisecond
	DefaultShutdownGrace  = 5 * time.Second
	DefaultLogLevel       = "debug"
	DefaultBufferOrder    = "fifo"
	DefaultBufferOverflow = "drop-oldest"
	DefaultLogBackups     = 3
)

// Config holds CLI configuration for dmxemu.
type Config struct {
	Host string `json:"host"`
	Port int    `json:"port"`

	// NumChannels is the DMX universe size and the maximum frame size.
	NumChannels int `json:"num_channels"`

	PollInterval  time.Duration `json:"polling_interval"`
	ReadTimeout   time.Duration `json:"read_timeout"`
	ShutdownGrace time.Duration `json:"shutdown_grace"`

	BufferCapacity int    `json:"buffer_capacity"`
	BufferOrder    string `json:"buffer_order"`
	BufferOverflow string `json:"buffer_overflow"`

	LogLevel   string `json:"log_level"`
	LogConsole bool   `json:"log_console"`
	LogFile    string `json:"log_file"`

	// LogBackups is how many rotated log files are kept. Zero keeps all.
	LogBackups int `json:"log_backups"`

	WatchConfig bool `json:"watch_config"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Host:           DefaultHost,
		Port:           DefaultPort,
		NumChannels:    DefaultNumChannels,
		PollInterval:   DefaultPollInterval,
		ShutdownGrace:  DefaultShutdownGrace,
		BufferCapacity: framebuf.DefaultCapacity,
		BufferOrder:    DefaultBufferOrder,
		BufferOverflow: DefaultBufferOverflow,
		LogLevel:       DefaultLogLevel,
		LogConsole:     true,
		LogBackups:     DefaultLogBackups,
		WatchConfig:    true,
	}
}

// Validate checks the configuration for errors and normalizes string enums.
func (c *Config) Validate() error {
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", domain.ErrInvalidConfig, c.Port)
	}
	if c.NumChannels <= 0 {
		return fmt.Errorf("%w: num-channels must be positive", domain.ErrInvalidConfig)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: polling interval must be positive", domain.ErrInvalidConfig)
	}
	if c.ShutdownGrace <= 0 {
		return fmt.Errorf("%w: shutdown grace must be positive", domain.ErrInvalidConfig)
	}
	if c.ReadTimeout < 0 {
		c.ReadTimeout = 0
	}
	if c.BufferCapacity < 0 {
		return fmt.Errorf("%w: buffer capacity must not be negative", domain.ErrInvalidConfig)
	}

	if c.LogBackups < 0 {
		return fmt.Errorf("%w: log backups must not be negative", domain.ErrInvalidConfig)
	}

	order, err := framebuf.ParseOrder(c.BufferOrder)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}
	c.BufferOrder = order.String()

	overflow, err := framebuf.ParseOverflow(c.BufferOverflow)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}
	c.BufferOverflow = overflow.String()

	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}
	c.LogLevel = level.String()

	return nil
}

// BufferOptions returns the frame buffer options described by the config.
// Call Validate first; unparseable values fall back to the buffer defaults.
func (c Config) BufferOptions() []framebuf.Option {
	opts := []framebuf.Option{framebuf.WithCapacity(c.BufferCapacity)}
	if o, err := framebuf.ParseOrder(c.BufferOrder); err == nil {
		opts = append(opts, framebuf.WithOrder(o))
	}
	if o, err := framebuf.ParseOverflow(c.BufferOverflow); err == nil {
		opts = append(opts, framebuf.WithOverflow(o))
	}
	return opts
}

// ParseDuration parses a Go duration string. A bare integer is taken as a
// count of unit: milliseconds for polling, seconds for timeouts.
func ParseDuration(value string, unit time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(n) * unit, nil
	}
	return time.ParseDuration(value)
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if not nil and flag not changed. Zero is a valid
// value for every int setting, so absence is expressed with nil.
func (s *configSetter) setInt(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, unit time.Duration, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := ParseDuration(value, unit)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
