package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFrom(t *testing.T) {
	path := writeConfigFile(t, `
[spotify]
client_id = "abc123"

[cache]
backend = "redis"
redis_addr = "localhost:6379"

[log]
level = "debug"
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}

	if cfg.Spotify.ClientID != "abc123" {
		t.Errorf("ClientID = %q, want abc123", cfg.Spotify.ClientID)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}

	// Defaults fill the rest.
	if cfg.Lyrics.BaseURL != "https://lrclib.net/api" {
		t.Errorf("Lyrics.BaseURL = %q, want default", cfg.Lyrics.BaseURL)
	}
	if cfg.Cache.TTLHours != 24 {
		t.Errorf("Cache.TTLHours = %d, want 24", cfg.Cache.TTLHours)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VERSE_SPOTIFY_CLIENT_ID", "from-env")
	t.Setenv("VERSE_LOG_LEVEL", "warn")
	t.Setenv("VERSE_LYRICS_TIMEOUT", "3")

	path := writeConfigFile(t, `
[spotify]
client_id = "from-file"
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}

	if cfg.Spotify.ClientID != "from-env" {
		t.Errorf("ClientID = %q, want env to win", cfg.Spotify.ClientID)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	if cfg.Lyrics.TimeoutSeconds != 3 {
		t.Errorf("TimeoutSeconds = %d, want 3", cfg.Lyrics.TimeoutSeconds)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "bad cache backend",
			mutate:  func(c *Config) { c.Cache.Backend = "memcached" },
			wantErr: "invalid backend",
		},
		{
			name:    "redis without addr",
			mutate:  func(c *Config) { c.Cache.Backend = "redis" },
			wantErr: "redis_addr is required",
		},
		{
			name:    "volume out of range",
			mutate:  func(c *Config) { c.Defaults.Volume = 150 },
			wantErr: "volume must be between",
		},
		{
			name:    "bad repeat mode",
			mutate:  func(c *Config) { c.Defaults.Repeat = "all" },
			wantErr: "invalid repeat mode",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
