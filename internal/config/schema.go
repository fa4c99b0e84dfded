package config

// Config is the root configuration structure.
type Config struct {
	Spotify  SpotifyConfig  `toml:"spotify"`
	Lyrics   LyricsConfig   `toml:"lyrics"`
	Cache    CacheConfig    `toml:"cache"`
	Defaults DefaultsConfig `toml:"defaults"`
	Log      LogConfig      `toml:"log"`
}

// SpotifyConfig holds Spotify API settings.
type SpotifyConfig struct {
	ClientID    string `toml:"client_id"`
	RedirectURI string `toml:"redirect_uri"`
}

// LyricsConfig holds lyrics-provider settings.
type LyricsConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// CacheConfig selects and configures the lyrics cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"` // memory, redis
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	TTLHours      int    `toml:"ttl_hours"`
}

// DefaultsConfig holds default playback settings.
type DefaultsConfig struct {
	Volume int    `toml:"volume"`
	Repeat string `toml:"repeat"`
	Device string `toml:"device"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}
