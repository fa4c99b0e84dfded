// Package auth implements Spotify's OAuth authorization-code flow with
// PKCE, plus local token persistence.
package auth

import (
	"net/url"
	"strings"
)

const (
	// AuthorizeURL is the Spotify authorization endpoint.
	AuthorizeURL = "https://accounts.spotify.com/authorize"

	// TokenURL is the Spotify token endpoint.
	TokenURL = "https://accounts.spotify.com/api/token"

	// DefaultRedirectURI is the callback URI for the local listener.
	DefaultRedirectURI = "http://127.0.0.1:8898/callback"
)

// Scopes are the Spotify scopes verse needs: reading the playback snapshot
// and issuing playback commands.
var Scopes = []string{
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-read-currently-playing",
	"user-read-recently-played",
}

// Config holds the OAuth client configuration.
type Config struct {
	ClientID    string
	RedirectURI string
	Scopes      []string
}

// NewConfig creates a Config with default redirect URI and scopes.
func NewConfig(clientID string) *Config {
	return &Config{
		ClientID:    clientID,
		RedirectURI: DefaultRedirectURI,
		Scopes:      Scopes,
	}
}

// AuthorizeURLFor builds the authorization URL for a PKCE exchange.
func (c *Config) AuthorizeURLFor(pkce *PKCE) string {
	u, _ := url.Parse(AuthorizeURL)

	q := u.Query()
	q.Set("client_id", c.ClientID)
	q.Set("response_type", "code")
	q.Set("redirect_uri", c.RedirectURI)
	q.Set("code_challenge_method", "S256")
	q.Set("code_challenge", pkce.Challenge)
	q.Set("state", pkce.State)
	if len(c.Scopes) > 0 {
		q.Set("scope", strings.Join(c.Scopes, " "))
	}

	u.RawQuery = q.Encode()
	return u.String()
}
