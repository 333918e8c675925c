package common

import (
	"context"
	"log/slog"

	"golang.org/x/oauth2"

	"github.com/teemow/gcalendar-mcp/internal/google"
	"github.com/teemow/gcalendar-mcp/internal/instrumentation"
	"github.com/teemow/gcalendar-mcp/internal/logging"
	"github.com/teemow/gcalendar-mcp/internal/toolerr"
)

// InstrumentedTokenProvider counts and logs every access-token exchange of
// the wrapped provider.
type InstrumentedTokenProvider struct {
	next   google.TokenProvider
	obs    Observer
	logger *slog.Logger
}

// NewInstrumentedTokenProvider wraps next. obs and logger may be nil.
func NewInstrumentedTokenProvider(next google.TokenProvider, obs Observer, logger *slog.Logger) *InstrumentedTokenProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &InstrumentedTokenProvider{next: next, obs: obs, logger: logger}
}

// AccessToken delegates to the wrapped provider.
func (p *InstrumentedTokenProvider) AccessToken(ctx context.Context) (*oauth2.Token, error) {
	tok, err := p.next.AccessToken(ctx)

	var metrics *instrumentation.Metrics
	if p.obs != nil {
		metrics = p.obs.Metrics()
	}

	if err != nil {
		metrics.RecordTokenExchange(ctx, instrumentation.TokenResultFailure)
		p.logger.LogAttrs(ctx, slog.LevelWarn, "Access token exchange failed",
			logging.ErrorKind(toolerr.KindOf(err)),
			logging.Err(err))
		return nil, err
	}

	metrics.RecordTokenExchange(ctx, instrumentation.TokenResultSuccess)
	p.logger.LogAttrs(ctx, slog.LevelDebug, "Access token exchanged",
		slog.String("token", logging.SanitizeToken(tok.AccessToken)))
	return tok, nil
}
