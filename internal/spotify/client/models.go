package client

// Image represents an image resource.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// Device represents a Spotify Connect playback device.
type Device struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	IsActive       bool   `json:"is_active"`
	IsRestricted   bool   `json:"is_restricted"`
	VolumePercent  *int   `json:"volume_percent"` // Nullable
	SupportsVolume bool   `json:"supports_volume"`
}

// DevicesResponse is the response from the devices endpoint.
type DevicesResponse struct {
	Devices []Device `json:"devices"`
}

// PlaybackState represents the playback state of the session. Item is nil
// when nothing is loaded.
type PlaybackState struct {
	Device               Device `json:"device"`
	ShuffleState         bool   `json:"shuffle_state"`
	RepeatState          string `json:"repeat_state"` // off, track, context
	ProgressMS           int    `json:"progress_ms"`
	IsPlaying            bool   `json:"is_playing"`
	Item                 *Track `json:"item"`
	CurrentlyPlayingType string `json:"currently_playing_type"` // track, episode, ad, unknown
}

// Track represents a Spotify track.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	URI        string   `json:"uri"`
	DurationMS int      `json:"duration_ms"`
	Explicit   bool     `json:"explicit"`
	Artists    []Artist `json:"artists"`
	Album      Album    `json:"album"`
}

// Artist represents a Spotify artist.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// Album represents a Spotify album.
type Album struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	URI         string  `json:"uri"`
	ReleaseDate string  `json:"release_date"`
	TotalTracks int     `json:"total_tracks"`
	Images      []Image `json:"images"`
}

// Queue is the response from the queue endpoint.
type Queue struct {
	CurrentlyPlaying *Track  `json:"currently_playing"`
	Queue            []Track `json:"queue"`
}

// SearchResponse holds search results by content type.
type SearchResponse struct {
	Tracks    *Paging[Track]        `json:"tracks"`
	Artists   *Paging[Artist]       `json:"artists"`
	Albums    *Paging[Album]        `json:"albums"`
	Playlists *Paging[PlaylistItem] `json:"playlists"`
}

// Paging is Spotify's cursor-less pagination envelope.
type Paging[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// PlaylistItem is a playlist as returned by search.
type PlaylistItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	URI    string `json:"uri"`
	Tracks struct {
		Total int `json:"total"`
	} `json:"tracks"`
}

// RecentlyPlayedResponse is the response from the recently-played endpoint.
type RecentlyPlayedResponse struct {
	Items []struct {
		Track    Track  `json:"track"`
		PlayedAt string `json:"played_at"`
	} `json:"items"`
}

// AudioFeatures is the audio-analysis summary for one track. The upstream
// service is treated as opaque; fields pass through untouched.
type AudioFeatures struct {
	ID               string  `json:"id"`
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Key              int     `json:"key"`
	Loudness         float64 `json:"loudness"`
	Mode             int     `json:"mode"`
	Speechiness      float64 `json:"speechiness"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Liveness         float64 `json:"liveness"`
	Valence          float64 `json:"valence"`
	Tempo            float64 `json:"tempo"`
	DurationMS       int     `json:"duration_ms"`
	TimeSignature    int     `json:"time_signature"`
}
