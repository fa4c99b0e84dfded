package perception

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tessro/verse/internal/lyrics"
)

// Assembler combines a playback snapshot with located lyrics. It holds no
// state between invocations; every Perceive call is a pure function of its
// collaborators' responses and is safe to run concurrently.
type Assembler struct {
	player SnapshotProvider
	source Source
	log    zerolog.Logger
}

// New creates an Assembler over the given collaborators.
func New(player SnapshotProvider, source Source, log zerolog.Logger) *Assembler {
	return &Assembler{
		player: player,
		source: source,
		log:    log.With().Str("component", "perception").Logger(),
	}
}

// Perceive builds the perception for the current moment. The only error it
// returns is a failed playback-state read; every lyrics-side anomaly
// degrades to a playback-only result. When nothing is loaded the result
// carries Playing=false and no lyrics lookup is attempted.
func (a *Assembler) Perceive(ctx context.Context) (*Result, error) {
	snap, err := a.player.NowPlaying(ctx)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return &Result{Playing: false}, nil
	}

	res := &Result{
		Playing:    snap.Playing,
		Title:      snap.Title,
		Artists:    snap.Artists,
		Album:      snap.Album,
		ProgressMS: snap.ProgressMS,
		DurationMS: snap.DurationMS,
	}
	if len(snap.Artists) > 0 {
		res.Artist = snap.Artists[0]
	}

	lyr, err := a.source.Lookup(ctx, snap.Title, res.Artist)
	res.LyricStatus = classify(lyr, err)

	switch res.LyricStatus {
	case StatusSynced:
		track := lyrics.Parse(lyr.Synced)
		pos := lyrics.Locate(track, float64(snap.ProgressMS)/1000)
		res.CurrentLine = pos.Current
		res.UpcomingLines = pos.Upcoming
	case StatusLookupFailed:
		a.log.Warn().Err(err).
			Str("title", snap.Title).
			Str("artist", res.Artist).
			Msg("lyrics lookup failed, continuing without lyrics")
	case StatusPlainOnly, StatusInstrumental, StatusNotFound:
		// Playback fields only.
	}

	return res, nil
}

// classify maps a lookup outcome to its LyricStatus. A synced payload wins
// over plain lyrics; whitespace-only payloads count as absent.
func classify(lyr *Lyrics, err error) LyricStatus {
	switch {
	case err != nil:
		return StatusLookupFailed
	case lyr == nil:
		return StatusNotFound
	case lyr.Instrumental:
		return StatusInstrumental
	case strings.TrimSpace(lyr.Synced) != "":
		return StatusSynced
	case strings.TrimSpace(lyr.Plain) != "":
		return StatusPlainOnly
	default:
		return StatusNotFound
	}
}
