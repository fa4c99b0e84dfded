// Package cli implements the verse command-line interface.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tessro/verse/internal/cache"
	"github.com/tessro/verse/internal/config"
	verrors "github.com/tessro/verse/internal/errors"
	"github.com/tessro/verse/internal/logging"
	"github.com/tessro/verse/internal/lrclib"
	"github.com/tessro/verse/internal/perception"
	"github.com/tessro/verse/internal/spotify/auth"
	"github.com/tessro/verse/internal/spotify/client"
	"github.com/tessro/verse/internal/spotify/player"
)

var (
	cfgFile string
	jsonOut bool
	verbose bool

	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "verse",
	Short: "A lyric-aware music session server for AI assistants",
	Long: `Verse exposes your Spotify session to AI assistants over the Model
Context Protocol, augmenting playback state with time-synced lyrics.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.verserc)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func initConfig() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logCfg := cfg.Log
	if verbose && logCfg.Level != "debug" {
		logCfg.Level = "debug"
	}
	log = logging.New(logCfg)

	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, verrors.Format(err))
		os.Exit(1)
	}
}

// JSONOutput returns true if JSON output is requested.
func JSONOutput() bool {
	return jsonOut
}

// Verbose returns true if verbose output is requested.
func Verbose() bool {
	return verbose
}

// newSpotifyClient builds an authenticated Spotify client from the stored
// token.
func newSpotifyClient() (*client.Client, error) {
	if cfg.Spotify.ClientID == "" {
		return nil, verrors.WithSuggestion(verrors.ErrInvalidConfig,
			"Set spotify.client_id in your config or via VERSE_SPOTIFY_CLIENT_ID")
	}

	storage, err := auth.NewTokenStorage("")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token storage: %w", err)
	}

	c := client.New(cfg.Spotify.ClientID, storage, log)
	if err := c.LoadToken(); err != nil {
		return nil, verrors.ErrNotAuthenticated
	}
	return c, nil
}

// newPlayer builds the Spotify-backed player.
func newPlayer() (*player.Player, error) {
	c, err := newSpotifyClient()
	if err != nil {
		return nil, err
	}
	p := player.New(c)
	if cfg.Defaults.Device != "" {
		p.SetDevice(cfg.Defaults.Device)
	}
	return p, nil
}

// newCacheStore builds the configured lyrics cache backend.
func newCacheStore() (cache.Store, error) {
	if cfg.Cache.Backend == "redis" {
		store, err := cache.NewRedis(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return store, nil
	}
	return cache.NewMemory(), nil
}

// newLyricsSource builds the cached lrclib lyrics source.
func newLyricsSource() (*lrclib.Source, error) {
	store, err := newCacheStore()
	if err != nil {
		return nil, err
	}

	c := lrclib.NewWithBaseURL(cfg.Lyrics.BaseURL, log)
	if cfg.Lyrics.TimeoutSeconds > 0 {
		c.SetTimeout(time.Duration(cfg.Lyrics.TimeoutSeconds) * time.Second)
	}

	source := lrclib.NewSource(c, store, log)
	source.SetTTL(time.Duration(cfg.Cache.TTLHours) * time.Hour)
	return source, nil
}

// newAssembler wires the perception assembler over the live player and
// lyrics source.
func newAssembler(p *player.Player, source *lrclib.Source) *perception.Assembler {
	return perception.New(p, source, log)
}
