package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tessro/verse/internal/spotify/auth"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	storage, err := auth.NewTokenStorage(filepath.Join(t.TempDir(), "token.json"))
	if err != nil {
		t.Fatalf("NewTokenStorage() error = %v", err)
	}

	c := New("client-id", storage, zerolog.Nop())
	if err := c.SetToken(&auth.Token{
		AccessToken: "test-token",
		ExpiresAt:   time.Now().Add(time.Hour),
	}); err != nil {
		t.Fatalf("SetToken() error = %v", err)
	}

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c.SetBaseURL(srv.URL)
	return c
}

func TestRequestSendsBearerToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		_, _ = w.Write([]byte(`{"progress_ms": 1500, "is_playing": true}`))
	})

	state, err := c.GetPlaybackState(context.Background())
	if err != nil {
		t.Fatalf("GetPlaybackState() error = %v", err)
	}
	if !state.IsPlaying || state.ProgressMS != 1500 {
		t.Errorf("state = %+v, want playing at 1500ms", state)
	}
}

func TestRequestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int64
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, `{"error":{"status":500,"message":"oops"}}`, http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"devices":[{"id":"d1","name":"Kitchen"}]}`))
	})

	devices, err := c.GetDevices(context.Background())
	if err != nil {
		t.Fatalf("GetDevices() error = %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("server hit %d times, want 2 (one retry)", calls.Load())
	}
	if len(devices) != 1 || devices[0].Name != "Kitchen" {
		t.Errorf("devices = %+v", devices)
	}
}

func TestRequestDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int64
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":{"status":404,"message":"Device not found"}}`, http.StatusNotFound)
	})

	err := c.Pause(context.Background(), "")
	if err == nil {
		t.Fatal("Pause() error = nil, want API error")
	}
	if calls.Load() != 1 {
		t.Errorf("server hit %d times, want 1 (no retry on 4xx)", calls.Load())
	}
	if !IsNoActiveDeviceError(err) {
		t.Errorf("IsNoActiveDeviceError(%v) = false, want true", err)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be hit for an empty query")
	})

	if _, err := c.Search(context.Background(), SearchOptions{}); err == nil {
		t.Fatal("Search() with empty query succeeded, want error")
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		params map[string]string
		want   string
	}{
		{name: "no params", path: "/me", params: nil, want: "/me"},
		{name: "empty params", path: "/me", params: map[string]string{}, want: "/me"},
		{name: "single param", path: "/search", params: map[string]string{"q": "test"}, want: "/search?q=test"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildURL(tt.path, tt.params); got != tt.want {
				t.Errorf("BuildURL() = %q, want %q", got, tt.want)
			}
		})
	}

	got := BuildURL("/search", map[string]string{"q": "test", "type": "track"})
	if !strings.Contains(got, "q=test") || !strings.Contains(got, "type=track") {
		t.Errorf("BuildURL() = %q, missing params", got)
	}
}

func TestAPIError(t *testing.T) {
	err := &APIError{}
	err.ErrorInfo.Status = 401
	err.ErrorInfo.Message = "Invalid access token"

	want := "spotify api error 401: Invalid access token"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
