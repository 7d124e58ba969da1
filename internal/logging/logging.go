// Package logging builds the process zerolog.Logger from configuration.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the log sinks and the initial level.
type Options struct {
	// Level is one of trace, debug, info, warn, error or disabled.
	Level string

	// Console writes human-readable output to ConsoleOut.
	Console bool

	// ConsoleOut defaults to os.Stderr.
	ConsoleOut io.Writer

	// File appends JSON lines to this path when not empty. The parent
	// directory is created if needed. The file is rotated at local midnight.
	File string

	// Backups is how many rotated files to keep. Zero keeps all.
	Backups int
}

// ParseLevel maps a configured level name to a zerolog level.
// An empty string means debug.
func ParseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "debug":
		return zerolog.DebugLevel, nil
	case "trace":
		return zerolog.TraceLevel, nil
	case "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "disabled", "off", "none":
		return zerolog.Disabled, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// New builds a logger writing to the sinks in opts. The returned closer
// releases the log file, if any, and is never nil.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	if opts.Console {
		out := opts.ConsoleOut
		if out == nil {
			out = os.Stderr
		}
		writers = append(writers, zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	}

	if opts.File != "" {
		rf, err := openRotating(opts.File, opts.Backups)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, err
		}
		writers = append(writers, rf)
		closer = rf
	}

	if len(writers) == 0 {
		return zerolog.Nop(), closer, nil
	}

	SetLevel(level)
	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(zerolog.TraceLevel).
		With().
		Timestamp().
		Logger()
	return logger, closer, nil
}

// SetLevel changes the minimum level for every logger built by New. It is
// safe to call while logging is in progress.
func SetLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

// Level returns the level currently in force.
func Level() zerolog.Level {
	return zerolog.GlobalLevel()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// rotatingFile is a lumberjack file that also rotates at local midnight.
type rotatingFile struct {
	*lumberjack.Logger

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func openRotating(path string, backups int) (*rotatingFile, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxBackups: backups,
		LocalTime:  true,
	}
	// Open now so that a bad path fails at startup.
	if _, err := lj.Write(nil); err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	rf := &rotatingFile{
		Logger: lj,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go rf.rotateDaily()
	return rf, nil
}

func (r *rotatingFile) rotateDaily() {
	defer close(r.done)
	for {
		t := time.NewTimer(time.Until(nextMidnight(time.Now())))
		select {
		case <-r.stop:
			t.Stop()
			return
		case <-t.C:
			_ = r.Rotate()
		}
	}
}

// Close stops the rotation timer and closes the file.
func (r *rotatingFile) Close() error {
	r.once.Do(func() {
		close(r.stop)
		<-r.done
	})
	return r.Logger.Close()
}

// nextMidnight returns the start of the day after t, in t's location.
func nextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}
