package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gcalendar-mcp/internal/calendar"
	"github.com/teemow/gcalendar-mcp/internal/config"
	"github.com/teemow/gcalendar-mcp/internal/google"
	"github.com/teemow/gcalendar-mcp/internal/instrumentation"
	"github.com/teemow/gcalendar-mcp/internal/logging"
	"github.com/teemow/gcalendar-mcp/internal/server"
	"github.com/teemow/gcalendar-mcp/internal/toolerr"
	"github.com/teemow/gcalendar-mcp/internal/tools"
	"github.com/teemow/gcalendar-mcp/internal/tools/calendar_tools"
	"github.com/teemow/gcalendar-mcp/internal/tools/common"
)

const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"

	metricsStartupTimeout = 5 * time.Second
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

type serveOptions struct {
	transport        string
	httpAddr         string
	debug            bool
	disableStreaming bool
	callTimeout      time.Duration
	metrics          MetricsConfig
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server exposing the Google Calendar tools.

Supported transports:
  - stdio: Standard input/output (default, for MCP clients that launch the server)
  - streamable-http: HTTP server on /mcp with health endpoints

Credentials are read from GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and
GOOGLE_REFRESH_TOKEN, or from the files given by --env-file and --config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("call-timeout") {
				cfg.CallTimeout = opts.callTimeout
			}
			if !cmd.Flags().Changed("metrics-enabled") {
				if v, ok := os.LookupEnv("METRICS_ENABLED"); ok {
					opts.metrics.Enabled = v == "true"
				}
			}
			if !cmd.Flags().Changed("metrics-addr") {
				if addr := os.Getenv("METRICS_ADDR"); addr != "" {
					opts.metrics.Addr = addr
				}
			}
			return runServe(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&opts.transport, "transport", transportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", server.DefaultHTTPAddr, "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&opts.disableStreaming, "disable-streaming", false, "Disable streaming for HTTP transport (for compatibility with certain clients)")
	cmd.Flags().DurationVar(&opts.callTimeout, "call-timeout", config.DefaultCallTimeout, "Deadline for a single tool call. Can also use CALL_TIMEOUT env var.")
	cmd.Flags().BoolVar(&opts.metrics.Enabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port (streamable-http only). Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&opts.metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// stack is the wired server: everything between a transport and the calendar API.
type stack struct {
	serverContext *server.ServerContext
	dispatcher    *tools.Dispatcher
	mcpServer     *mcpserver.MCPServer
	router        *server.Router
}

// newStack wires the tool dispatcher and protocol router around the given
// token provider. provider may be nil.
func newStack(ctx context.Context, cfg *config.Config, logger *slog.Logger, provider *instrumentation.Provider, tokens google.TokenProvider, clientOpts ...calendar.ClientOption) (*stack, error) {
	sc := server.NewServerContext(ctx,
		server.WithLogger(logger),
		server.WithInstrumentation(provider),
		server.WithAuditLogger(instrumentation.NewAuditLogger(logger, cfg.Instrumentation.AuditLogging)),
	)

	tokens = common.NewInstrumentedTokenProvider(tokens, sc, logger)
	clientOpts = append([]calendar.ClientOption{calendar.WithUserAgent("gcalendar-mcp/" + version)}, clientOpts...)
	client, err := calendar.NewClient(tokens, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar client: %w", err)
	}

	dispatcher, err := tools.NewDispatcher(
		tools.NewRegistry(cfg.DefaultTimeZone),
		calendar_tools.NewOperations(client, sc),
		tools.WithCallTimeout(cfg.CallTimeout),
		tools.WithLogger(logger),
		tools.WithMetrics(sc.Metrics()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatcher: %w", err)
	}

	mcpSrv := mcpserver.NewMCPServer("gcalendar-mcp", version,
		mcpserver.WithToolCapabilities(true),
	)
	calendar_tools.RegisterCalendarTools(mcpSrv, dispatcher)

	return &stack{
		serverContext: sc,
		dispatcher:    dispatcher,
		mcpServer:     mcpSrv,
		router:        server.NewRouter(mcpSrv, dispatcher, logger),
	}, nil
}

// instrumentationConfig maps the loaded configuration onto the telemetry provider.
func instrumentationConfig(cfg *config.Config) instrumentation.Config {
	ic := instrumentation.DefaultConfig()
	ic.ServiceVersion = version
	ic.Enabled = cfg.Instrumentation.Enabled
	ic.MetricsExporter = cfg.Instrumentation.MetricsExporter
	ic.TracingExporter = cfg.Instrumentation.TracingExporter
	ic.OTLPEndpoint = cfg.Instrumentation.OTLPEndpoint
	ic.OTLPInsecure = cfg.Instrumentation.OTLPInsecure
	ic.TraceSamplingRate = cfg.Instrumentation.TraceSamplingRate
	ic.AuditLogging = cfg.Instrumentation.AuditLogging
	return ic
}

// validateServe checks the settings that depend on the chosen transport.
func validateServe(cfg *config.Config, opts serveOptions) error {
	switch opts.transport {
	case transportStdio, transportStreamableHTTP:
	default:
		return toolerr.Newf(toolerr.ConfigurationFailure,
			"unsupported transport type: %s (supported: stdio, streamable-http)", opts.transport)
	}

	// stdout belongs to the protocol on the stdio transport.
	if opts.transport == transportStdio && cfg.Instrumentation.Enabled &&
		(cfg.Instrumentation.MetricsExporter == instrumentation.ExporterStdout ||
			cfg.Instrumentation.TracingExporter == instrumentation.ExporterStdout) {
		return toolerr.New(toolerr.ConfigurationFailure,
			"the stdout telemetry exporters cannot be used with the stdio transport")
	}
	return nil
}

func runServe(parent context.Context, cfg *config.Config, opts serveOptions) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := validateServe(cfg, opts); err != nil {
		return err
	}

	level := cfg.LogLevel
	if opts.debug {
		level = "debug"
	}
	logger := logging.New(os.Stderr, level)
	slog.SetDefault(logger)

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := instrumentation.NewProvider(ctx, instrumentationConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}

	conf := google.OAuthConfig(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
	st, err := newStack(ctx, cfg, logger, provider, google.NewRefreshTokenProvider(conf, cfg.Google.RefreshToken))
	if err != nil {
		_ = provider.Shutdown(context.Background())
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := st.serverContext.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during server context shutdown", logging.Err(err))
		}
	}()

	if !cfg.HasRefreshToken() {
		logger.Warn("GOOGLE_REFRESH_TOKEN is not set; calendar tools will fail until it is configured")
	}

	logger.Info("Starting gcalendar-mcp",
		slog.String("version", version),
		slog.String("transport", opts.transport),
		slog.String("default_timezone", cfg.DefaultTimeZone),
		slog.Duration("call_timeout", cfg.CallTimeout),
		slog.Int("tools", len(st.dispatcher.Registry().Names())),
	)

	switch opts.transport {
	case transportStreamableHTTP:
		return runStreamableHTTPServer(ctx, st, cfg, opts, logger)
	default:
		return runStdioServer(ctx, st, logger)
	}
}

func runStdioServer(ctx context.Context, st *stack, logger *slog.Logger) error {
	if err := server.ServeStdio(ctx, st.router, os.Stdin, os.Stdout, logger); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	logger.Info("Input closed, shutting down")
	return nil
}

func runStreamableHTTPServer(ctx context.Context, st *stack, cfg *config.Config, opts serveOptions, logger *slog.Logger) error {
	sc := st.serverContext

	metricsServer, err := startMetricsServer(sc.InstrumentationProvider(), opts.metrics, logger)
	if err != nil {
		return err
	}

	health := server.NewHealthChecker(sc)
	health.AddCheck("refresh_token", func() error {
		if !cfg.HasRefreshToken() {
			return errors.New("GOOGLE_REFRESH_TOKEN not configured")
		}
		return nil
	})

	httpServer := server.NewHTTPServer(sc, st.mcpServer, st.router, health, server.HTTPServerConfig{
		Addr:             opts.httpAddr,
		DisableStreaming: opts.disableStreaming,
	})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- httpServer.Start()
	}()

	select {
	case err = <-serverErr:
		if err != nil {
			err = fmt.Errorf("HTTP server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	health.SetReady(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer cancel()

	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Error("Error during HTTP server shutdown", logging.Err(shutdownErr))
	}
	if metricsServer != nil {
		if shutdownErr := metricsServer.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Error("Error during metrics server shutdown", logging.Err(shutdownErr))
		}
	}
	return err
}

// startMetricsServer starts the Prometheus endpoint when enabled and waits
// until it listens. It returns nil when no metrics server is wanted.
func startMetricsServer(provider *instrumentation.Provider, mc MetricsConfig, logger *slog.Logger) (*server.MetricsServer, error) {
	if !mc.Enabled || provider == nil || !provider.Enabled() || !provider.UsesPrometheus() {
		return nil, nil
	}

	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    mc.Addr,
		InstrumentationProvider: provider,
		Logger:                  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	ready := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		metricsErr <- metricsServer.StartWithReadySignal(ready)
	}()

	select {
	case <-ready:
		logger.Info("Metrics server started", slog.String("addr", metricsServer.Addr()))
		return metricsServer, nil
	case err := <-metricsErr:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(metricsStartupTimeout):
		return nil, fmt.Errorf("metrics server startup timed out")
	}
}
