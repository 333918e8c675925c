// Package instrumentation provides OpenTelemetry instrumentation for the
// calendar MCP server.
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// Google API Metrics:
//   - google_api_operations_total: Counter of calendar API operations by operation and status
//   - google_api_operation_duration_seconds: Histogram of calendar API operation durations
//   - oauth_token_exchange_total: Counter of refresh-token exchanges by result
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of tool execution durations
//   - mcp_tool_errors_total: Counter of failed invocations by tool and error kind
//
// # Tracing
//
// Spans are created for tool invocations (tool.<name>) and calendar API calls
// (google.calendar.<operation>). Tracing is off unless a tracing exporter is configured.
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordToolInvocation(ctx, "list_events", instrumentation.StatusSuccess, time.Since(start))
package instrumentation
