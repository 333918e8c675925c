package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/teemow/gcalendar-mcp/internal/toolerr"
)

const (
	// DefaultTimeZone is used for event times when the caller supplies none.
	DefaultTimeZone = "America/Chicago"

	// DefaultCallTimeout bounds a single tool call including upstream requests.
	DefaultCallTimeout = 30 * time.Second

	// DefaultRedirectURL is the loopback redirect used by the auth command.
	DefaultRedirectURL = "http://localhost:8080"

	// DefaultLogLevel is the slog level name used when none is configured.
	DefaultLogLevel = "info"

	// DefaultMetricsExporter and DefaultTracingExporter select the telemetry backends.
	DefaultMetricsExporter = "prometheus"
	DefaultTracingExporter = "none"

	// DefaultTraceSamplingRate is the fraction of traces kept.
	DefaultTraceSamplingRate = 0.1
)

// Config holds the server configuration.
type Config struct {
	Google          GoogleConfig  `mapstructure:"google"`
	DefaultTimeZone string        `mapstructure:"default_timezone"`
	CallTimeout     time.Duration `mapstructure:"call_timeout"`
	LogLevel        string        `mapstructure:"log_level"`

	Instrumentation InstrumentationConfig `mapstructure:"instrumentation"`
}

// InstrumentationConfig selects metrics, tracing and audit logging.
type InstrumentationConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	MetricsExporter   string  `mapstructure:"metrics_exporter"`
	TracingExporter   string  `mapstructure:"tracing_exporter"`
	OTLPEndpoint      string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure      bool    `mapstructure:"otlp_insecure"`
	TraceSamplingRate float64 `mapstructure:"trace_sampling_rate"`
	AuditLogging      bool    `mapstructure:"audit_logging"`
}

// GoogleConfig holds the OAuth client and the long-lived refresh credential.
type GoogleConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RefreshToken string `mapstructure:"refresh_token"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

// LoadOptions selects the optional files Load reads.
type LoadOptions struct {
	// EnvFile is the dotenv file to load. Empty means ".env"; a missing file is ignored.
	EnvFile string
	// ConfigFile is an explicit YAML file. Empty means an optional config.yaml
	// in the working directory.
	ConfigFile string
}

// keys maps every config key to the environment variable it is read from.
var keys = map[string]string{
	"google.client_id":     "GOOGLE_CLIENT_ID",
	"google.client_secret": "GOOGLE_CLIENT_SECRET",
	"google.refresh_token": "GOOGLE_REFRESH_TOKEN",
	"google.redirect_url":  "GOOGLE_REDIRECT_URL",
	"default_timezone":     "DEFAULT_TIMEZONE",
	"call_timeout":         "CALL_TIMEOUT",
	"log_level":            "LOG_LEVEL",

	"instrumentation.enabled":             "INSTRUMENTATION_ENABLED",
	"instrumentation.metrics_exporter":    "METRICS_EXPORTER",
	"instrumentation.tracing_exporter":    "TRACING_EXPORTER",
	"instrumentation.otlp_endpoint":       "OTEL_EXPORTER_OTLP_ENDPOINT",
	"instrumentation.otlp_insecure":       "OTEL_EXPORTER_OTLP_INSECURE",
	"instrumentation.trace_sampling_rate": "OTEL_TRACES_SAMPLER_ARG",
	"instrumentation.audit_logging":       "AUDIT_LOGGING_ENABLED",
}

// Load reads the configuration. It does not validate it; call Validate or
// ValidateClient once the caller knows which settings it needs.
func Load(opts LoadOptions) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	v := viper.New()
	v.SetDefault("default_timezone", DefaultTimeZone)
	v.SetDefault("call_timeout", DefaultCallTimeout)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("google.redirect_url", DefaultRedirectURL)
	v.SetDefault("instrumentation.enabled", true)
	v.SetDefault("instrumentation.metrics_exporter", DefaultMetricsExporter)
	v.SetDefault("instrumentation.tracing_exporter", DefaultTracingExporter)
	v.SetDefault("instrumentation.trace_sampling_rate", DefaultTraceSamplingRate)
	v.SetDefault("instrumentation.audit_logging", true)

	for key, env := range keys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	cfg.DefaultTimeZone = strings.TrimSpace(cfg.DefaultTimeZone)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	return &cfg, nil
}

// ValidateClient checks the settings every command needs: the OAuth client
// credentials. A failure is a ConfigurationFailure and is fatal at startup.
func (c *Config) ValidateClient() error {
	var missing []string
	if c.Google.ClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}
	if c.Google.ClientSecret == "" {
		missing = append(missing, "GOOGLE_CLIENT_SECRET")
	}
	if len(missing) > 0 {
		return toolerr.Newf(toolerr.ConfigurationFailure,
			"%s environment variable(s) required", strings.Join(missing, " and "))
	}
	return nil
}

// Validate checks everything the server needs at startup. The refresh token is
// not checked; a missing one surfaces on the first calendar call.
func (c *Config) Validate() error {
	if err := c.ValidateClient(); err != nil {
		return err
	}
	if c.DefaultTimeZone == "" {
		return toolerr.New(toolerr.ConfigurationFailure, "DEFAULT_TIMEZONE must not be empty")
	}
	if _, err := time.LoadLocation(c.DefaultTimeZone); err != nil {
		return toolerr.Wrap(toolerr.ConfigurationFailure,
			fmt.Sprintf("invalid DEFAULT_TIMEZONE %q", c.DefaultTimeZone), err)
	}
	if c.CallTimeout <= 0 {
		return toolerr.Newf(toolerr.ConfigurationFailure,
			"CALL_TIMEOUT must be positive, got %s", c.CallTimeout)
	}
	return nil
}

// HasRefreshToken reports whether a refresh credential is configured.
func (c *Config) HasRefreshToken() bool {
	return c.Google.RefreshToken != ""
}
