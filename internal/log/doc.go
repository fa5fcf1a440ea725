// Package log provides logging for wikirace, built on top of the standard
// slog package.
//
// This package extends slog to provide:
//   - Clipping of oversized attribute values (article markup, API bodies)
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Value clipping
//
// The TruncatingHandler shortens string attributes longer than a limit and
// appends the number of bytes dropped, so a debug line that happens to carry
// a rendered article stays one readable line.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	logger.Debug("page loaded",
//	    "title", "Albert Einstein",
//	    "markup", markup, // clipped to DefaultMaxValueLen bytes
//	)
//
//	slog.SetDefault(logger)
package log
