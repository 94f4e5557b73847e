package testutil

import "log/slog"

// DiscardLogger returns a slog.Logger that discards all output.
// Use it to keep test output quiet; for components taking the
// internal/log alias, log.NewNop() returns the same type.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
