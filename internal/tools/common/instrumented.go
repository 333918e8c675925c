package common

import (
	"context"
	"time"

	"github.com/teemow/gcalendar-mcp/internal/instrumentation"
	"github.com/teemow/gcalendar-mcp/internal/toolerr"
	"github.com/teemow/gcalendar-mcp/internal/tools"
)

// Observer supplies the optional metrics and audit sinks. Either may be nil.
type Observer interface {
	Metrics() *instrumentation.Metrics
	AuditLogger() *instrumentation.AuditLogger
}

// Instrumented wraps op with a Google API span, operation metrics and an audit
// record. The wrapped operation's result and error pass through unchanged.
//
// Usage:
//
//	ops[tools.ToolGetEvent] = common.Instrumented(tools.ToolGetEvent, instrumentation.ServiceCalendar, instrumentation.OperationGet, sc, op)
func Instrumented(toolName, serviceName, operation string, obs Observer, op tools.Operation) tools.Operation {
	return func(ctx context.Context, args tools.Arguments) (any, error) {
		var (
			metrics     *instrumentation.Metrics
			auditLogger *instrumentation.AuditLogger
		)
		if obs != nil {
			metrics = obs.Metrics()
			auditLogger = obs.AuditLogger()
		}

		calendarID, eventID := Target(args)
		requestID := tools.RequestIDFromContext(ctx)

		attrs := instrumentation.NewSpanAttributeBuilder().
			WithTool(toolName).
			WithRequestID(requestID)
		switch {
		case eventID != "":
			attrs.WithResource("event", eventID)
		case calendarID != "":
			attrs.WithResource("calendar", calendarID)
		}
		ctx, span := instrumentation.StartGoogleAPISpan(ctx, serviceName, operation, attrs.Build()...)
		defer span.End()

		start := time.Now()
		invocation := instrumentation.NewToolInvocation(toolName).
			WithRequestID(requestID).
			WithService(serviceName, operation).
			WithTarget(calendarID, eventID).
			WithSpanContext(ctx)

		result, err := op(ctx, args)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
			kind := toolerr.KindOf(err).String()
			invocation.CompleteWithError(kind, err)
			instrumentation.SetSpanErrorKind(span, kind, err)
		} else {
			invocation.CompleteSuccess()
			instrumentation.SetSpanSuccess(span)
		}

		metrics.RecordGoogleAPIOperation(ctx, serviceName, operation, status, duration)
		auditLogger.LogToolInvocation(invocation)

		return result, err
	}
}

// Target returns the calendar and event an argument record acts on.
func Target(args tools.Arguments) (calendarID, eventID string) {
	switch a := args.(type) {
	case tools.GetCalendarArgs:
		return a.CalendarID, ""
	case tools.ListEventsArgs:
		return a.CalendarID, ""
	case tools.GetEventArgs:
		return a.CalendarID, a.EventID
	case tools.CreateEventArgs:
		return a.CalendarID, ""
	case tools.UpdateEventArgs:
		return a.CalendarID, a.EventID
	case tools.DeleteEventArgs:
		return a.CalendarID, a.EventID
	default:
		return "", ""
	}
}
