// Package logging provides structured logging utilities for the calendar MCP server.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package. All output goes
// to stderr: on the stdio transport, stdout carries protocol frames only.
//
// # Usage Patterns
//
// Create a logger scoped to a tool call:
//
//	logger := logging.WithRequestID(logging.WithTool(base, "create_event"), id)
//	logger.Info("dispatching",
//	    logging.CalendarID("primary"))
//
// Tokens are never logged directly; use SanitizeToken:
//
//	logger.Debug("token refreshed", "access_token", logging.SanitizeToken(tok.AccessToken))
package logging
