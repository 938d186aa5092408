// Package logging assembles structured slog loggers and formatting helpers used
// across mediasyncdel.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so webhook requests tag every
// line they produce with a correlation ID. The package also provides a no-op
// logger for tests and wiring code that cannot fail.
package logging
