package server

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"

	"github.com/teemow/gcalendar-mcp/internal/instrumentation"
	"github.com/teemow/gcalendar-mcp/internal/tools"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestRouter wires a router whose operations echo the tool name, except
// for the ones replaced in overrides.
func newTestRouter(t *testing.T, overrides map[string]tools.Operation) (*Router, *mcpserver.MCPServer) {
	t.Helper()

	reg := tools.NewRegistry("UTC")
	ops := make(map[string]tools.Operation, len(reg.Names()))
	for _, name := range reg.Names() {
		ops[name] = func(context.Context, tools.Arguments) (any, error) {
			return map[string]string{"tool": name}, nil
		}
	}
	for name, op := range overrides {
		ops[name] = op
	}

	d, err := tools.NewDispatcher(reg, ops,
		tools.WithLogger(discardLogger()),
		tools.WithCallTimeout(time.Second),
	)
	require.NoError(t, err)

	mcpSrv := mcpserver.NewMCPServer("gcalendar-mcp-test", "0.0.0", mcpserver.WithToolCapabilities(true))
	return NewRouter(mcpSrv, d, discardLogger()), mcpSrv
}

func createTestProvider(t *testing.T) *instrumentation.Provider {
	t.Helper()
	ctx := context.Background()
	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: instrumentation.ExporterPrometheus,
		TracingExporter: instrumentation.ExporterNone,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = provider.Shutdown(ctx)
	})
	return provider
}

func createDisabledProvider(t *testing.T) *instrumentation.Provider {
	t.Helper()
	provider, err := instrumentation.NewProvider(context.Background(), instrumentation.Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Enabled:        false,
	})
	require.NoError(t, err)
	return provider
}
