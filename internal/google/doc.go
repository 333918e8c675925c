// Package google provides OAuth2 credentials for the Google Calendar API.
//
// The server acts for a single user through a refresh credential obtained once
// with the auth command. The TokenProvider interface decouples calendar calls
// from how that credential becomes an access token; RefreshTokenProvider
// performs the exchange on every call.
package google
