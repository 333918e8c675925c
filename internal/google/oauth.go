package google

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/teemow/gcalendar-mcp/internal/toolerr"
)

// OAuthConfig returns the OAuth2 configuration for the calendar API.
func OAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       DefaultOAuthScopes,
	}
}

// AuthCodeURL returns the consent URL for the one-time authorization flow.
// Offline access with a forced consent prompt makes Google issue a refresh
// token even when the user has authorized the client before.
func AuthCodeURL(conf *oauth2.Config) string {
	return conf.AuthCodeURL("state",
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// ExchangeCode exchanges an authorization code for tokens. The returned token
// always carries a refresh token.
func ExchangeCode(ctx context.Context, conf *oauth2.Config, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, toolerr.New(toolerr.InvalidArguments, "authorization code must not be empty")
	}

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, toolerr.Wrap(toolerr.AuthFailure, "failed to exchange auth code", err)
	}
	if tok.RefreshToken == "" {
		return nil, toolerr.New(toolerr.AuthFailure,
			"no refresh token returned; revoke the app's access in your Google account and retry")
	}

	return tok, nil
}

// NewHTTPClient returns an HTTP client that authenticates every request with tok.
// The client is configured to use HTTP/1.1 to avoid HTTP/2 protocol errors.
func NewHTTPClient(ctx context.Context, tok *oauth2.Token) *http.Client {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok))

	base := http.DefaultTransport.(*http.Transport).Clone()
	base.ForceAttemptHTTP2 = false
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = base
	}

	return client
}
