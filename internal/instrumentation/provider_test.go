package instrumentation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewProvider_Disabled(t *testing.T) {
	config := Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Enabled:        false,
	}

	provider, err := NewProvider(context.Background(), config)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if provider.Enabled() {
		t.Error("expected provider to be disabled")
	}
	if provider.Metrics() == nil {
		t.Error("expected metrics to be non-nil even when disabled")
	}
	if provider.UsesPrometheus() {
		t.Error("disabled provider should not export to prometheus")
	}

	// Recording on the no-op metrics must not panic
	provider.Metrics().RecordToolInvocation(context.Background(), "list_events", StatusSuccess, time.Millisecond)

	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("expected no error on shutdown, got %v", err)
	}
}

func TestNewProvider_PrometheusExporter(t *testing.T) {
	config := Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, config)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	if !provider.Enabled() {
		t.Error("expected provider to be enabled")
	}
	if !provider.UsesPrometheus() {
		t.Error("expected prometheus exporter to be configured")
	}
	if provider.Tracer("test") == nil {
		t.Error("expected tracer to be non-nil")
	}
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{
		Enabled:         true,
		MetricsExporter: "carrier-pigeon",
	})
	if err == nil {
		t.Fatal("expected error for invalid exporter")
	}
}

func TestProvider_HTTPMiddleware(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	handler := provider.HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("expected status to pass through, got %d", rec.Code)
	}
}
