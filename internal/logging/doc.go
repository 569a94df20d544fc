// Package logging assembles structured slog loggers and formatting helpers used
// across vidingest.
//
// It owns the console/JSON handlers, centralizes level and output plumbing, and
// exposes context-aware helpers so pipeline code can tag log lines with the
// request correlation ID and cache key of the ingest in flight. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
package logging
