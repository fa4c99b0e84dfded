package config

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Spotify: SpotifyConfig{
			RedirectURI: "http://127.0.0.1:8898/callback",
		},
		Lyrics: LyricsConfig{
			BaseURL:        "https://lrclib.net/api",
			TimeoutSeconds: 10,
		},
		Cache: CacheConfig{
			Backend:  "memory",
			TTLHours: 24,
		},
		Defaults: DefaultsConfig{
			Volume: 50,
			Repeat: "off",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	if c.Spotify.RedirectURI == "" {
		c.Spotify.RedirectURI = d.Spotify.RedirectURI
	}

	if c.Lyrics.BaseURL == "" {
		c.Lyrics.BaseURL = d.Lyrics.BaseURL
	}
	if c.Lyrics.TimeoutSeconds == 0 {
		c.Lyrics.TimeoutSeconds = d.Lyrics.TimeoutSeconds
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = d.Cache.Backend
	}
	if c.Cache.TTLHours == 0 {
		c.Cache.TTLHours = d.Cache.TTLHours
	}

	if c.Defaults.Volume == 0 {
		c.Defaults.Volume = d.Defaults.Volume
	}
	if c.Defaults.Repeat == "" {
		c.Defaults.Repeat = d.Defaults.Repeat
	}

	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}
