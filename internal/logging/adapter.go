package logging

import (
	"fmt"
	"log/slog"
)

// SlogAdapter adapts an slog.Logger to the printf-style logger interface the
// mcp-go transports accept, so their diagnostics land in the same stream.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter wrapping the given slog.Logger.
// If logger is nil, slog.Default() is used.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger.With(slog.String("component", "mcp-go"))}
}

// Infof logs a formatted info message.
func (a *SlogAdapter) Infof(format string, v ...any) {
	a.logger.Info(fmt.Sprintf(format, v...))
}

// Errorf logs a formatted error message.
func (a *SlogAdapter) Errorf(format string, v ...any) {
	a.logger.Error(fmt.Sprintf(format, v...))
}

// Logger returns the underlying slog.Logger.
func (a *SlogAdapter) Logger() *slog.Logger {
	return a.logger
}
