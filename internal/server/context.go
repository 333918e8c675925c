package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/teemow/gcalendar-mcp/internal/instrumentation"
)

// ServerContext holds the process-wide dependencies of a running server.
type ServerContext struct {
	ctx         context.Context
	cancel      context.CancelFunc
	logger      *slog.Logger
	provider    *instrumentation.Provider
	auditLogger *instrumentation.AuditLogger
	mu          sync.RWMutex
	shutdown    bool
}

// ServerContextOption configures a ServerContext.
type ServerContextOption func(*ServerContext)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) ServerContextOption {
	return func(sc *ServerContext) {
		if logger != nil {
			sc.logger = logger
		}
	}
}

// WithInstrumentation sets the telemetry provider whose metrics the tools record.
func WithInstrumentation(provider *instrumentation.Provider) ServerContextOption {
	return func(sc *ServerContext) {
		sc.provider = provider
	}
}

// WithAuditLogger sets the tool invocation audit logger.
func WithAuditLogger(al *instrumentation.AuditLogger) ServerContextOption {
	return func(sc *ServerContext) {
		sc.auditLogger = al
	}
}

// NewServerContext creates a server context derived from ctx.
func NewServerContext(ctx context.Context, opts ...ServerContextOption) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)
	sc := &ServerContext{
		ctx:    shutdownCtx,
		cancel: cancel,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(sc)
	}
	return sc
}

// Context returns the server context. It is cancelled on Shutdown.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Metrics returns the metrics recorder, or nil when instrumentation is off.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	if sc.provider == nil || !sc.provider.Enabled() {
		return nil
	}
	return sc.provider.Metrics()
}

// AuditLogger returns the audit logger, or nil when none is configured.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.auditLogger
}

// InstrumentationProvider returns the telemetry provider, which may be nil.
func (sc *ServerContext) InstrumentationProvider() *instrumentation.Provider {
	return sc.provider
}

// IsShutdown returns whether the server has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the server context and flushes pending telemetry.
func (sc *ServerContext) Shutdown(ctx context.Context) error {
	sc.mu.Lock()
	if sc.shutdown {
		sc.mu.Unlock()
		return nil
	}
	sc.shutdown = true
	sc.mu.Unlock()

	sc.cancel()
	if sc.provider != nil {
		return sc.provider.Shutdown(ctx)
	}
	return nil
}
