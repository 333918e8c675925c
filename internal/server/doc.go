// Package server runs the calendar MCP server over stdio or HTTP.
//
// Router sits in front of the mcp-go server at the JSON-RPC message level.
// tools/list is answered from the tool registry in declaration order and
// tools/call goes straight to the dispatcher, so unknown tools receive the
// regular error envelope instead of a protocol error. Every other method
// (initialize, ping, notifications) is handled by mcp-go.
//
// ServeStdio reads newline-delimited messages and answers each one on its own
// goroutine; only writes to the output are serialized.
//
// HTTPServer serves the same router on /mcp next to the mcp-go streamable
// HTTP transport, plus health endpoints for Kubernetes probes. MetricsServer
// exposes Prometheus metrics on a dedicated port.
package server
