// Package cmd implements the command-line interface for gcalendar-mcp.
//
// This package provides the following commands:
//   - serve: Start the MCP server over stdio or streamable HTTP
//   - auth: Run the one-time OAuth flow and print a refresh token
//   - tools: Print the tool definitions as JSON
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
