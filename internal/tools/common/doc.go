// Package common holds instrumentation shared by the tool operations: the
// wrapper that traces, meters and audits each Google Calendar call, and a
// token provider that records every credential exchange.
package common
