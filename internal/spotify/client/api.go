package client

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// GetDevices returns the session's available playback devices.
func (c *Client) GetDevices(ctx context.Context) ([]Device, error) {
	var resp DevicesResponse
	if err := c.Get(ctx, "/me/player/devices", &resp); err != nil {
		return nil, err
	}
	return resp.Devices, nil
}

// GetPlaybackState returns the playback state, or a zero-value state when
// nothing is active (Spotify answers 204 in that case).
func (c *Client) GetPlaybackState(ctx context.Context) (*PlaybackState, error) {
	var state PlaybackState
	if err := c.Get(ctx, "/me/player", &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SearchType is a type of Spotify content to search.
type SearchType string

const (
	SearchTypeTrack    SearchType = "track"
	SearchTypeArtist   SearchType = "artist"
	SearchTypeAlbum    SearchType = "album"
	SearchTypePlaylist SearchType = "playlist"
)

// SearchOptions configures a search query.
type SearchOptions struct {
	Query  string
	Types  []SearchType
	Limit  int
	Offset int
}

// Search performs a catalog search.
func (c *Client) Search(ctx context.Context, opts SearchOptions) (*SearchResponse, error) {
	if opts.Query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}

	types := make([]string, len(opts.Types))
	for i, t := range opts.Types {
		types[i] = string(t)
	}
	if len(types) == 0 {
		types = []string{"track"}
	}

	params := map[string]string{
		"q":    opts.Query,
		"type": strings.Join(types, ","),
	}
	if opts.Limit > 0 {
		params["limit"] = strconv.Itoa(opts.Limit)
	}
	if opts.Offset > 0 {
		params["offset"] = strconv.Itoa(opts.Offset)
	}

	var resp SearchResponse
	if err := c.Get(ctx, BuildURL("/search", params), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetRecentlyPlayed returns the session's recently played tracks.
func (c *Client) GetRecentlyPlayed(ctx context.Context, limit int) (*RecentlyPlayedResponse, error) {
	params := make(map[string]string)
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}

	var resp RecentlyPlayedResponse
	if err := c.Get(ctx, BuildURL("/me/player/recently-played", params), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAudioFeatures returns the audio-analysis summary for a track.
func (c *Client) GetAudioFeatures(ctx context.Context, trackID string) (*AudioFeatures, error) {
	if trackID == "" {
		return nil, fmt.Errorf("track id cannot be empty")
	}

	var features AudioFeatures
	if err := c.Get(ctx, "/audio-features/"+trackID, &features); err != nil {
		return nil, err
	}
	return &features, nil
}
