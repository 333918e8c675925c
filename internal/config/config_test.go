package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/gcalendar-mcp/internal/toolerr"
)

// isolate runs the test in an empty directory with every config variable cleared.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, env := range keys {
		t.Setenv(env, "")
		require.NoError(t, os.Unsetenv(env))
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, DefaultTimeZone, cfg.DefaultTimeZone)
	assert.Equal(t, DefaultCallTimeout, cfg.CallTimeout)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultRedirectURL, cfg.Google.RedirectURL)
	assert.Empty(t, cfg.Google.ClientID)
	assert.False(t, cfg.HasRefreshToken())
}

func TestLoad_Environment(t *testing.T) {
	isolate(t)
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "client-secret")
	t.Setenv("GOOGLE_REFRESH_TOKEN", "refresh")
	t.Setenv("DEFAULT_TIMEZONE", "Europe/Berlin")
	t.Setenv("CALL_TIMEOUT", "5s")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "client-id", cfg.Google.ClientID)
	assert.Equal(t, "client-secret", cfg.Google.ClientSecret)
	assert.Equal(t, "refresh", cfg.Google.RefreshToken)
	assert.Equal(t, "Europe/Berlin", cfg.DefaultTimeZone)
	assert.Equal(t, 5*time.Second, cfg.CallTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := isolate(t)
	t.Setenv("GOOGLE_CLIENT_ID", "from-env")

	content := "GOOGLE_CLIENT_ID=from-file\nGOOGLE_CLIENT_SECRET=secret-from-file\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Google.ClientID)
	assert.Equal(t, "secret-from-file", cfg.Google.ClientSecret)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := isolate(t)
	t.Setenv("DEFAULT_TIMEZONE", "Asia/Tokyo")

	content := `google:
  client_id: yaml-id
  client_secret: yaml-secret
default_timezone: Europe/London
call_timeout: 10s
`
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(LoadOptions{ConfigFile: path})
	require.NoError(t, err)

	assert.Equal(t, "yaml-id", cfg.Google.ClientID)
	assert.Equal(t, "yaml-secret", cfg.Google.ClientSecret)
	assert.Equal(t, "Asia/Tokyo", cfg.DefaultTimeZone, "environment wins over file")
	assert.Equal(t, 10*time.Second, cfg.CallTimeout)
}

func TestLoad_MissingExplicitConfigFile(t *testing.T) {
	isolate(t)

	_, err := Load(LoadOptions{ConfigFile: "does-not-exist.yaml"})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Google:          GoogleConfig{ClientID: "id", ClientSecret: "secret"},
			DefaultTimeZone: DefaultTimeZone,
			CallTimeout:     DefaultCallTimeout,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "valid without refresh token",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing client id",
			mutate:  func(c *Config) { c.Google.ClientID = "" },
			wantErr: "GOOGLE_CLIENT_ID environment variable(s) required",
		},
		{
			name: "missing both client credentials",
			mutate: func(c *Config) {
				c.Google.ClientID = ""
				c.Google.ClientSecret = ""
			},
			wantErr: "GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET environment variable(s) required",
		},
		{
			name:    "unknown timezone",
			mutate:  func(c *Config) { c.DefaultTimeZone = "Mars/Olympus_Mons" },
			wantErr: `invalid DEFAULT_TIMEZONE "Mars/Olympus_Mons"`,
		},
		{
			name:    "empty timezone",
			mutate:  func(c *Config) { c.DefaultTimeZone = "" },
			wantErr: "DEFAULT_TIMEZONE must not be empty",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.CallTimeout = 0 },
			wantErr: "CALL_TIMEOUT must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, toolerr.ConfigurationFailure, toolerr.KindOf(err))
		})
	}
}

func TestLoad_InstrumentationDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, InstrumentationConfig{
		Enabled:           true,
		MetricsExporter:   "prometheus",
		TracingExporter:   "none",
		TraceSamplingRate: 0.1,
		AuditLogging:      true,
	}, cfg.Instrumentation)
}

func TestLoad_InstrumentationEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("INSTRUMENTATION_ENABLED", "false")
	t.Setenv("METRICS_EXPORTER", "otlp")
	t.Setenv("TRACING_EXPORTER", "stdout")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "true")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.5")
	t.Setenv("AUDIT_LOGGING_ENABLED", "false")

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, InstrumentationConfig{
		MetricsExporter:   "otlp",
		TracingExporter:   "stdout",
		OTLPEndpoint:      "collector:4318",
		OTLPInsecure:      true,
		TraceSamplingRate: 0.5,
	}, cfg.Instrumentation)
}
