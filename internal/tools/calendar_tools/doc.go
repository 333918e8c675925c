// Package calendar_tools binds the calendar tools to a calendar.Service and
// registers them with the MCP server.
//
// Every operation is wrapped with tracing, metrics and an audit record, and
// every MCP tool handler delegates to the shared tools.Dispatcher so that
// argument defaults, validation and deadlines apply uniformly.
package calendar_tools
