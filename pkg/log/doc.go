// Package log provides the logging abstraction used by dmxemu components.
//
// Components log through the Logger interface so that the ingestion core
// stays independent of the concrete logging library. A zerolog adapter is
// provided for the command line tools and a no-op logger for library
// defaults and tests.
//
// # Usage
//
//	logger := log.NewZerologAdapterWithLogger(zerolog.New(os.Stderr))
//	connLog := logger.With(log.String("remote", addr))
//	connLog.Info("connection opened")
//
// # Custom Loggers
//
// Implement the Logger interface to integrate with existing logging
// infrastructure. With must return a logger that prefixes every entry with
// the given fields and must leave the receiver unchanged.
//
// # Version
//
// Current version: 1.1.0
// Minimum compatible version: 1.1.0
package log
