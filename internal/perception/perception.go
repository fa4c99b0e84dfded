// Package perception assembles the "what is playing now" view: a live
// playback snapshot merged with the lyric line that applies at the current
// position.
package perception

import (
	"context"

	"github.com/tessro/verse/internal/lyrics"
)

// Snapshot is the playback-state view the assembler consumes.
type Snapshot struct {
	Title      string
	Artists    []string
	Album      string
	ProgressMS int
	DurationMS int
	Playing    bool
}

// SnapshotProvider yields the live playback snapshot. A nil snapshot with a
// nil error means nothing is currently loaded.
type SnapshotProvider interface {
	NowPlaying(ctx context.Context) (*Snapshot, error)
}

// Lyrics is the lyrics-collaborator result the assembler consumes.
type Lyrics struct {
	TrackName    string
	ArtistName   string
	AlbumName    string
	Instrumental bool
	Plain        string
	Synced       string
}

// Source looks up lyrics by track title and primary artist name. A nil
// result with a nil error means no lyrics were found.
type Source interface {
	Lookup(ctx context.Context, title, artist string) (*Lyrics, error)
}

// LyricStatus classifies the outcome of a lyrics lookup, so the assembler
// branches exhaustively instead of relying on implicit fallthrough.
type LyricStatus string

const (
	// StatusSynced means a non-empty synchronized-lyrics payload is
	// available and line location was performed.
	StatusSynced LyricStatus = "synced"

	// StatusPlainOnly means lyrics exist but carry no timestamps.
	StatusPlainOnly LyricStatus = "plain_only"

	// StatusInstrumental means the track is flagged instrumental.
	StatusInstrumental LyricStatus = "instrumental"

	// StatusNotFound means the lyrics provider had no match.
	StatusNotFound LyricStatus = "not_found"

	// StatusLookupFailed means the lyrics lookup itself failed. The failure
	// is swallowed: the perception proceeds without lyric fields.
	StatusLookupFailed LyricStatus = "lookup_failed"
)

// Result is an assembled perception. When nothing is playing only Playing is
// populated; lyric fields are present only for StatusSynced.
type Result struct {
	Playing       bool          `json:"playing"`
	Title         string        `json:"title,omitempty"`
	Artist        string        `json:"artist,omitempty"`
	Artists       []string      `json:"artists,omitempty"`
	Album         string        `json:"album,omitempty"`
	ProgressMS    int           `json:"progress_ms,omitempty"`
	DurationMS    int           `json:"duration_ms,omitempty"`
	LyricStatus   LyricStatus   `json:"lyric_status,omitempty"`
	CurrentLine   *lyrics.Line  `json:"current_line,omitempty"`
	UpcomingLines []lyrics.Line `json:"upcoming_lines,omitempty"`
}
