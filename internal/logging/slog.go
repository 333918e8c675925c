package logging

import (
	"fmt"
	"log/slog"
	"time"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation  = "operation"
	KeyService    = "service"
	KeyTool       = "tool"
	KeyRequestID  = "request_id"
	KeyTraceID    = "trace_id"
	KeyCalendarID = "calendar_id"
	KeyEventID    = "event_id"
	KeyDuration   = "duration"
	KeyStatus     = "status"
	KeyErrorKind  = "error_kind"
	KeyError      = "error"
	KeyMethod     = "method"
)

// Status values for consistent logging.
const (
	StatusSuccess     = "success"
	StatusError       = "error"
	StatusUnknownTool = "unknown_tool"
)

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// WithRequestID returns a logger scoped to a single tool call.
func WithRequestID(logger *slog.Logger, requestID string) *slog.Logger {
	return logger.With(slog.String(KeyRequestID, requestID))
}

// WithTraceID adds the trace_id attribute when traceID is non-empty.
func WithTraceID(logger *slog.Logger, traceID string) *slog.Logger {
	if traceID == "" {
		return logger
	}
	return logger.With(slog.String(KeyTraceID, traceID))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Service returns a slog attribute for the service name.
func Service(svc string) slog.Attr {
	return slog.String(KeyService, svc)
}

// Tool returns a slog attribute for the tool name.
func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

// CalendarID returns a slog attribute for a calendar reference.
func CalendarID(id string) slog.Attr {
	return slog.String(KeyCalendarID, id)
}

// EventID returns a slog attribute for an event identifier.
func EventID(id string) slog.Attr {
	return slog.String(KeyEventID, id)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Method returns a slog attribute for a JSON-RPC method name.
func Method(method string) slog.Attr {
	return slog.String(KeyMethod, method)
}

// Duration returns a slog attribute for an elapsed time.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration(KeyDuration, d)
}

// ErrorKind returns a slog attribute for a classified failure kind.
func ErrorKind(kind fmt.Stringer) slog.Attr {
	return slog.String(KeyErrorKind, kind.String())
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that will be omitted from output.
// This allows safely passing Err(maybeNilErr) without adding empty attributes.
//
// Usage:
//
//	logger.Info("operation", logging.Err(err))  // Safe even if err is nil
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// SanitizeToken returns a masked version of a token for logging.
// It returns a length indicator without exposing any token content.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}
