package instrumentation

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSpanAttributeBuilder(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithTool("get_event").
		WithService(ServiceCalendar).
		WithOperation(OperationGet).
		WithRequestID("req-1").
		WithResource("event", "ev1").
		WithReadOnly(true).
		Build()

	if len(attrs) != 7 {
		t.Errorf("expected 7 attributes, got %d", len(attrs))
	}

	attrMap := make(map[string]interface{})
	for _, attr := range attrs {
		attrMap[string(attr.Key)] = attr.Value.AsInterface()
	}

	if attrMap[SpanAttrTool] != "get_event" {
		t.Errorf("expected tool 'get_event', got %v", attrMap[SpanAttrTool])
	}
	if attrMap[SpanAttrRequestID] != "req-1" {
		t.Errorf("expected request id 'req-1', got %v", attrMap[SpanAttrRequestID])
	}
	if attrMap[SpanAttrResourceID] != "ev1" {
		t.Errorf("expected resource id 'ev1', got %v", attrMap[SpanAttrResourceID])
	}
	if attrMap[SpanAttrReadOnly] != true {
		t.Errorf("expected read_only true, got %v", attrMap[SpanAttrReadOnly])
	}
}

func TestSpanAttributeBuilder_EmptyValues(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithTool("list_colors").
		WithRequestID("").
		WithResource("", "").
		Build()

	if len(attrs) != 1 {
		t.Errorf("expected 1 attribute, got %d", len(attrs))
	}
}

func TestSpans_RecordedWithStatus(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	ctx, toolSpan := StartToolSpan(context.Background(), "delete_event")
	_, apiSpan := StartGoogleAPISpan(ctx, ServiceCalendar, OperationDelete)

	if GetTraceID(ctx) == "" {
		t.Error("expected a trace id inside the tool span")
	}

	SetSpanErrorKind(apiSpan, "upstream_failure", errors.New("gone"))
	apiSpan.End()
	SetSpanSuccess(toolSpan)
	toolSpan.End()

	ended := recorder.Ended()
	if len(ended) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(ended))
	}
	if ended[0].Name() != "google.calendar.delete" {
		t.Errorf("unexpected api span name %q", ended[0].Name())
	}
	if ended[0].Status().Code != codes.Error {
		t.Errorf("expected api span status error, got %v", ended[0].Status().Code)
	}
	if ended[0].Parent().SpanID() != ended[1].SpanContext().SpanID() {
		t.Error("api span should be a child of the tool span")
	}
	if ended[1].Name() != "tool.delete_event" {
		t.Errorf("unexpected tool span name %q", ended[1].Name())
	}
}

func TestGetTraceID_NoSpan(t *testing.T) {
	if id := GetTraceID(context.Background()); id != "" {
		t.Errorf("expected empty trace id, got %q", id)
	}
}
