package instrumentation

// Cardinality management helpers for metrics.
// These functions reduce high-cardinality label values to prevent metrics explosion.
//
// # Warning
//
// Request paths are client-controlled. Record them only through
// NormalizeHTTPPath so requests for arbitrary URLs do not create new series.

// PathOther is the path label for requests outside the served routes.
const PathOther = "other"

// servedPaths are the routes the HTTP transport and metrics server expose.
var servedPaths = map[string]bool{
	"/mcp":              true,
	"/healthz":          true,
	"/readyz":           true,
	"/healthz/detailed": true,
	"/metrics":          true,
}

// NormalizeHTTPPath maps a request path to a bounded label value.
//
// Example:
//
//	NormalizeHTTPPath("/mcp")          // "/mcp"
//	NormalizeHTTPPath("/mcp/")         // "/mcp"
//	NormalizeHTTPPath("/wp-login.php") // "other"
func NormalizeHTTPPath(path string) string {
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	if servedPaths[path] {
		return path
	}
	return PathOther
}
