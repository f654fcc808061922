package application

import "log/slog"

const logModule = "marketplace/settlement-engine"

// ResolveLogger falls back to the process default when no logger is wired.
func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
