// Package lrclib is a client for the lrclib.net lyrics database.
package lrclib

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the public lrclib.net API root.
const DefaultBaseURL = "https://lrclib.net/api"

const requestTimeout = 5 * time.Second

// ErrNotFound is returned when lrclib has no lyrics for a track.
var ErrNotFound = errors.New("lrclib: lyrics not found")

// Record is one lrclib result. SyncedLyrics, when present, is LRC text with
// one [mm:ss.cc]-tagged line per row.
type Record struct {
	ID           int     `json:"id"`
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	AlbumName    string  `json:"albumName"`
	Duration     float64 `json:"duration"`
	Instrumental bool    `json:"instrumental"`
	PlainLyrics  string  `json:"plainLyrics"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

// Client talks to an lrclib-compatible API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	log        zerolog.Logger
}

// New creates a Client against the public lrclib.net instance.
func New(log zerolog.Logger) *Client {
	return NewWithBaseURL(DefaultBaseURL, log)
}

// NewWithBaseURL creates a Client against a specific API root. Tests point
// this at a local server.
func NewWithBaseURL(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		userAgent:  "verse/1.0 (https://github.com/tessro/verse)",
		log:        log.With().Str("component", "lrclib").Logger(),
	}
}

// SetTimeout overrides the per-request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.httpClient.Timeout = d
}

// Get fetches the exact record for a track. Album and durationSec are
// optional refinements; zero values are omitted from the query. Returns
// ErrNotFound when lrclib has no match.
func (c *Client) Get(ctx context.Context, title, artist, album string, durationSec int) (*Record, error) {
	params := url.Values{}
	params.Set("track_name", title)
	params.Set("artist_name", artist)
	if album != "" {
		params.Set("album_name", album)
	}
	if durationSec > 0 {
		params.Set("duration", strconv.Itoa(durationSec))
	}

	var rec Record
	if err := c.getJSON(ctx, "/get?"+params.Encode(), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Search runs a fuzzy search and returns all candidate records.
func (c *Client) Search(ctx context.Context, title, artist string) ([]Record, error) {
	params := url.Values{}
	params.Set("track_name", title)
	params.Set("artist_name", artist)

	var recs []Record
	if err := c.getJSON(ctx, "/search?"+params.Encode(), &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// Find resolves the best record for a track: an exact Get first, then a
// Search with best-match selection. durationSec of 0 disables duration
// matching. Returns ErrNotFound when neither path produces lyrics.
func (c *Client) Find(ctx context.Context, title, artist, album string, durationSec int) (*Record, error) {
	rec, err := c.Get(ctx, title, artist, album, durationSec)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	c.log.Debug().Str("title", title).Str("artist", artist).Msg("exact match missed, searching")

	recs, err := c.Search(ctx, title, artist)
	if err != nil {
		return nil, err
	}
	best := bestMatch(recs, title, artist, durationSec)
	if best == nil {
		return nil, ErrNotFound
	}
	return best, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("lrclib request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("lrclib returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode lrclib response: %w", err)
	}
	return nil
}

// bestMatch picks the most plausible record from search results: records
// matching both title and artist beat title-only matches, and within a pool
// the duration closest to the target wins. Records with no lyrics at all are
// skipped.
func bestMatch(recs []Record, title, artist string, durationSec int) *Record {
	var exact, partial []*Record
	for i := range recs {
		rec := &recs[i]
		if rec.PlainLyrics == "" && rec.SyncedLyrics == "" && !rec.Instrumental {
			continue
		}
		switch {
		case containsFold(rec.TrackName, title) && containsFold(rec.ArtistName, artist):
			exact = append(exact, rec)
		case containsFold(rec.TrackName, title):
			partial = append(partial, rec)
		}
	}

	pool := exact
	if len(pool) == 0 {
		pool = partial
	}
	if len(pool) == 0 {
		return nil
	}
	if durationSec <= 0 {
		return pool[0]
	}

	best := pool[0]
	bestDiff := durationDiff(best.Duration, durationSec)
	for _, rec := range pool[1:] {
		if d := durationDiff(rec.Duration, durationSec); d < bestDiff {
			best, bestDiff = rec, d
		}
	}
	return best
}

func durationDiff(have float64, want int) float64 {
	d := have - float64(want)
	if d < 0 {
		return -d
	}
	return d
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
