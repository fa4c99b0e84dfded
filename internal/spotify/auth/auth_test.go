package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"net/url"
	"path/filepath"
	"testing"
	"time"
)

func TestNewPKCE(t *testing.T) {
	pkce, err := NewPKCE()
	if err != nil {
		t.Fatalf("NewPKCE() error = %v", err)
	}

	if len(pkce.Verifier) != verifierLength {
		t.Errorf("Verifier length = %d, want %d", len(pkce.Verifier), verifierLength)
	}
	if len(pkce.State) != stateLength {
		t.Errorf("State length = %d, want %d", len(pkce.State), stateLength)
	}

	sum := sha256.Sum256([]byte(pkce.Verifier))
	if want := base64.RawURLEncoding.EncodeToString(sum[:]); pkce.Challenge != want {
		t.Errorf("Challenge = %q, want %q", pkce.Challenge, want)
	}

	other, err := NewPKCE()
	if err != nil {
		t.Fatalf("NewPKCE() second call error = %v", err)
	}
	if pkce.Verifier == other.Verifier || pkce.State == other.State {
		t.Error("two PKCE instances share values, expected unique")
	}
}

func TestAuthorizeURLFor(t *testing.T) {
	cfg := NewConfig("client-123")
	pkce := &PKCE{Challenge: "chal", State: "st"}

	raw := cfg.AuthorizeURLFor(pkce)
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("AuthorizeURLFor() produced invalid URL: %v", err)
	}

	q := u.Query()
	checks := map[string]string{
		"client_id":             "client-123",
		"response_type":         "code",
		"code_challenge_method": "S256",
		"code_challenge":        "chal",
		"state":                 "st",
		"redirect_uri":          DefaultRedirectURI,
	}
	for key, want := range checks {
		if got := q.Get(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
	if q.Get("scope") == "" {
		t.Error("scope missing from authorize URL")
	}
}

func TestTokenIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{"valid", time.Now().Add(time.Hour), false},
		{"expired", time.Now().Add(-time.Hour), true},
		{"inside buffer", time.Now().Add(10 * time.Second), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := &Token{ExpiresAt: tt.expiresAt}
			if got := tok.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTokenStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	storage, err := NewTokenStorage(path)
	if err != nil {
		t.Fatalf("NewTokenStorage() error = %v", err)
	}

	if tok, err := storage.Load(); err != nil || tok != nil {
		t.Fatalf("Load() before save = (%v, %v), want (nil, nil)", tok, err)
	}

	want := &Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		ExpiresAt:    time.Now().Add(time.Hour).Truncate(time.Second),
	}
	if err := storage.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := storage.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.AccessToken != want.AccessToken || got.RefreshToken != want.RefreshToken {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}

	if err := storage.Delete(); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if tok, _ := storage.Load(); tok != nil {
		t.Error("token still present after Delete()")
	}
	// Deleting again is a no-op.
	if err := storage.Delete(); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}
}
