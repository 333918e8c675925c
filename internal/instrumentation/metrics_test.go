package instrumentation

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	return m, reader
}

// counterValue returns the sum of the named counter's data points matching attrs.
func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect failed: %v", err)
	}

	want := attribute.NewSet(attrs...)
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %s is not an int64 sum", name)
			}
			for _, dp := range sum.DataPoints {
				if dp.Attributes.Equals(&want) {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func TestMetrics_RecordToolInvocation(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordToolInvocation(ctx, "list_events", StatusSuccess, 10*time.Millisecond)
	m.RecordToolInvocation(ctx, "list_events", StatusSuccess, 20*time.Millisecond)
	m.RecordToolInvocation(ctx, "frobnicate", StatusUnknownTool, time.Millisecond)

	got := counterValue(t, reader, "mcp_tool_invocations_total",
		attribute.String(attrTool, "list_events"), attribute.String(attrStatus, StatusSuccess))
	if got != 2 {
		t.Errorf("list_events success count = %d, want 2", got)
	}

	got = counterValue(t, reader, "mcp_tool_invocations_total",
		attribute.String(attrTool, "frobnicate"), attribute.String(attrStatus, StatusUnknownTool))
	if got != 1 {
		t.Errorf("unknown tool count = %d, want 1", got)
	}
}

func TestMetrics_RecordToolError(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordToolError(context.Background(), "get_event", "upstream_failure")

	got := counterValue(t, reader, "mcp_tool_errors_total",
		attribute.String(attrTool, "get_event"), attribute.String(attrErrorKind, "upstream_failure"))
	if got != 1 {
		t.Errorf("error count = %d, want 1", got)
	}
}

func TestMetrics_RecordGoogleAPIOperation(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordGoogleAPIOperation(context.Background(), ServiceCalendar, OperationCreate, StatusError, 500*time.Millisecond)

	got := counterValue(t, reader, "google_api_operations_total",
		attribute.String(attrService, ServiceCalendar),
		attribute.String(attrOperation, OperationCreate),
		attribute.String(attrStatus, StatusError))
	if got != 1 {
		t.Errorf("operation count = %d, want 1", got)
	}
}

func TestMetrics_RecordTokenExchange(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordTokenExchange(context.Background(), TokenResultFailure)

	got := counterValue(t, reader, "oauth_token_exchange_total", attribute.String(attrResult, TokenResultFailure))
	if got != 1 {
		t.Errorf("token exchange failures = %d, want 1", got)
	}
}

func TestMetrics_RecordHTTPRequest(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordHTTPRequest(context.Background(), "POST", "/mcp", 200, 100*time.Millisecond)

	got := counterValue(t, reader, "http_requests_total",
		attribute.String(attrMethod, "POST"),
		attribute.String(attrPath, "/mcp"),
		attribute.String(attrStatus, "200"))
	if got != 1 {
		t.Errorf("http request count = %d, want 1", got)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()

	// None of these should panic
	m.RecordToolInvocation(ctx, "x", StatusSuccess, time.Second)
	m.RecordToolError(ctx, "x", "internal")
	m.RecordGoogleAPIOperation(ctx, ServiceCalendar, OperationGet, StatusSuccess, time.Second)
	m.RecordTokenExchange(ctx, TokenResultSuccess)
	m.RecordHTTPRequest(ctx, "GET", "/", 200, time.Second)

	empty := &Metrics{}
	empty.RecordToolInvocation(ctx, "x", StatusSuccess, time.Second)
}
