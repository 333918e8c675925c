package google

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/teemow/gcalendar-mcp/internal/toolerr"
)

// TokenProvider yields an access token for a single calendar call.
type TokenProvider interface {
	AccessToken(ctx context.Context) (*oauth2.Token, error)
}

// RefreshTokenProvider exchanges a long-lived refresh credential for a fresh
// access token on every call. Nothing is cached between calls.
type RefreshTokenProvider struct {
	conf         *oauth2.Config
	refreshToken string
}

// NewRefreshTokenProvider creates a provider for the given client configuration
// and refresh credential. An empty refresh token is accepted here and reported
// on first use.
func NewRefreshTokenProvider(conf *oauth2.Config, refreshToken string) *RefreshTokenProvider {
	return &RefreshTokenProvider{conf: conf, refreshToken: refreshToken}
}

// AccessToken performs the refresh exchange.
func (p *RefreshTokenProvider) AccessToken(ctx context.Context) (*oauth2.Token, error) {
	if p.refreshToken == "" {
		return nil, toolerr.New(toolerr.ConfigurationFailure,
			"GOOGLE_REFRESH_TOKEN environment variable is required. Run the auth command first to obtain a refresh token")
	}

	ts := p.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: p.refreshToken})
	tok, err := ts.Token()
	if err != nil {
		if ctx.Err() != nil {
			return nil, toolerr.Wrap(toolerr.UpstreamFailure, "token exchange aborted", ctx.Err())
		}
		return nil, toolerr.Wrap(toolerr.AuthFailure, "failed to refresh access token", err)
	}

	return tok, nil
}

// StaticTokenProvider returns a fixed token or error. It is used where no
// exchange should happen, such as tests against a fake calendar endpoint.
type StaticTokenProvider struct {
	Token *oauth2.Token
	Err   error
}

// AccessToken returns the configured token or error.
func (p StaticTokenProvider) AccessToken(_ context.Context) (*oauth2.Token, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	return p.Token, nil
}
