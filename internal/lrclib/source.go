package lrclib

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tessro/verse/internal/cache"
	"github.com/tessro/verse/internal/perception"
)

// DefaultCacheTTL bounds how long a resolved record is reused. Lyrics rarely
// change, but corrections do land upstream.
const DefaultCacheTTL = 24 * time.Hour

// Source adapts a Client to the perception.Source interface, memoizing
// resolved records in a cache.Store. Only positive results are cached;
// misses and failures go back upstream on the next request.
type Source struct {
	client *Client
	store  cache.Store
	ttl    time.Duration
	log    zerolog.Logger
}

// NewSource creates a Source. store may be nil to disable caching.
func NewSource(client *Client, store cache.Store, log zerolog.Logger) *Source {
	return &Source{
		client: client,
		store:  store,
		ttl:    DefaultCacheTTL,
		log:    log.With().Str("component", "lyrics-source").Logger(),
	}
}

// SetTTL overrides how long cached records are reused.
func (s *Source) SetTTL(ttl time.Duration) {
	if ttl > 0 {
		s.ttl = ttl
	}
}

// Lookup implements perception.Source. A missing record maps to (nil, nil);
// transport and decoding failures surface as errors for the assembler to
// classify.
func (s *Source) Lookup(ctx context.Context, title, artist string) (*perception.Lyrics, error) {
	key := fmt.Sprintf("lyrics:%s|%s", title, artist)

	if s.store != nil {
		if cached, ok, err := s.store.Get(ctx, key); err == nil && ok {
			var rec Record
			if err := json.Unmarshal([]byte(cached), &rec); err == nil {
				s.log.Debug().Str("key", key).Msg("lyrics cache hit")
				return toPerception(&rec), nil
			}
		}
	}

	rec, err := s.client.Find(ctx, title, artist, "", 0)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		if data, err := json.Marshal(rec); err == nil {
			if err := s.store.Set(ctx, key, string(data), s.ttl); err != nil {
				s.log.Warn().Err(err).Str("key", key).Msg("failed to cache lyrics")
			}
		}
	}

	return toPerception(rec), nil
}

func toPerception(rec *Record) *perception.Lyrics {
	return &perception.Lyrics{
		TrackName:    rec.TrackName,
		ArtistName:   rec.ArtistName,
		AlbumName:    rec.AlbumName,
		Instrumental: rec.Instrumental,
		Plain:        rec.PlainLyrics,
		Synced:       rec.SyncedLyrics,
	}
}
