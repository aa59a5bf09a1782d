// Package logging provides structured logging configuration for pagemigrate.
//
// This package wraps log/slog to provide consistent logging across the
// mapping loaders, the function pipeline and the CLI. It supports
// configurable log levels and output formats.
//
// # Usage
//
// Create a logger with desired configuration:
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatText,
//	})
//
//	logger.Info("plugin loaded", "plugin", "contoso")
//	logger.Error("plugin load failed", "error", err)
//
// # Log Observers
//
// A transformation run reports to a collection of log observers. Each
// observer is a slog.Handler; ForObservers fans records out to all of them
// through a MultiHandler.
//
// # Integration
//
// Components should accept a *slog.Logger in their constructor or via an
// option. If no logger is provided, use logging.Nop() for a no-op logger.
package logging
