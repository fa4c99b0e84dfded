package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

const (
	// verifierLength is the PKCE code verifier length. Spotify accepts
	// 43-128 characters.
	verifierLength = 64

	// stateLength is the length of the CSRF state parameter.
	stateLength = 32
)

// PKCE holds the code verifier, challenge and state for one OAuth exchange.
type PKCE struct {
	Verifier  string
	Challenge string
	State     string
}

// NewPKCE generates a fresh verifier, its S256 challenge, and a state value.
func NewPKCE() (*PKCE, error) {
	verifier, err := randomString(verifierLength)
	if err != nil {
		return nil, err
	}
	state, err := randomString(stateLength)
	if err != nil {
		return nil, err
	}
	return &PKCE{
		Verifier:  verifier,
		Challenge: challengeFor(verifier),
		State:     state,
	}, nil
}

// randomString returns a cryptographically random string of URL-safe base64
// characters.
func randomString(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	encoded := base64.RawURLEncoding.EncodeToString(buf)
	if len(encoded) > length {
		encoded = encoded[:length]
	}
	return encoded, nil
}

// challengeFor computes base64url(sha256(verifier)).
func challengeFor(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
