package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gcalendar-mcp/internal/logging"
)

const (
	// DefaultHTTPAddr is the default listen address of the HTTP transport.
	DefaultHTTPAddr = ":8080"

	// DefaultEndpointPath is where MCP messages are accepted.
	DefaultEndpointPath = "/mcp"

	// DefaultReadHeaderTimeout bounds reading request headers.
	DefaultReadHeaderTimeout = 10 * time.Second
)

// HTTPServerConfig configures the HTTP transport.
type HTTPServerConfig struct {
	Addr             string
	EndpointPath     string
	DisableStreaming bool
}

// HTTPServer serves MCP over HTTP together with the health endpoints.
type HTTPServer struct {
	httpServer *http.Server
	handler    http.Handler
	addr       string
	logger     *slog.Logger
}

// NewHTTPServer builds the HTTP transport. Tool requests posted to the
// endpoint are answered by router; all other MCP traffic goes to the mcp-go
// streamable HTTP handler.
func NewHTTPServer(sc *ServerContext, mcpSrv *mcpserver.MCPServer, router *Router, health *HealthChecker, config HTTPServerConfig) *HTTPServer {
	if config.Addr == "" {
		config.Addr = DefaultHTTPAddr
	}
	if config.EndpointPath == "" {
		config.EndpointPath = DefaultEndpointPath
	}

	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath(config.EndpointPath),
		mcpserver.WithStateLess(true),
		mcpserver.WithDisableStreaming(config.DisableStreaming),
		mcpserver.WithLogger(logging.NewSlogAdapter(sc.Logger())),
	)

	mux := http.NewServeMux()
	mux.Handle(config.EndpointPath, toolInterceptor(router, streamable))
	if health != nil {
		health.RegisterHealthEndpoints(mux)
	}

	var handler http.Handler = mux
	if p := sc.InstrumentationProvider(); p != nil && p.Enabled() {
		handler = p.HTTPMiddleware(handler)
	}

	return &HTTPServer{
		httpServer: &http.Server{
			Addr:              config.Addr,
			Handler:           handler,
			ReadHeaderTimeout: DefaultReadHeaderTimeout,
		},
		handler: handler,
		addr:    config.Addr,
		logger:  sc.Logger(),
	}
}

// Handler returns the root HTTP handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

// Addr returns the configured listen address.
func (s *HTTPServer) Addr() string {
	return s.addr
}

// Start listens on the configured address and serves until Shutdown.
func (s *HTTPServer) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown. It returns nil after a clean shutdown,
// including when Shutdown ran before Serve; ln is closed in that case.
func (s *HTTPServer) Serve(ln net.Listener) error {
	s.logger.Info("Starting HTTP server", slog.String("addr", ln.Addr().String()))
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server. It is safe to call before or
// concurrently with Serve.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// toolInterceptor answers single tools/list and tools/call requests with the
// router and passes everything else, including batches, to next.
func toolInterceptor(router *Router, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxMessageSize))
		if err != nil {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}

		var msg rpcMessage
		if json.Unmarshal(body, &msg) == nil && IsToolMethod(msg.Method) && !isNotification(msg.ID) {
			resp := router.HandleMessage(r.Context(), body)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(resp)
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}
