package core

import "time"

// PlaybackState represents the current playback state of the session.
type PlaybackState struct {
	Track     *Track        `json:"track"`
	Device    *Device       `json:"device"`
	IsPlaying bool          `json:"is_playing"`
	Progress  time.Duration `json:"progress"`
	Volume    int           `json:"volume"`
	Shuffle   bool          `json:"shuffle"`
	Repeat    string        `json:"repeat"` // off, track, context
}

// HasTrack returns true if there is an active track.
func (s *PlaybackState) HasTrack() bool {
	return s != nil && s.Track != nil
}

// ProgressSeconds returns the elapsed position in seconds, the unit the
// lyric locator works in.
func (s *PlaybackState) ProgressSeconds() float64 {
	if s == nil {
		return 0
	}
	return s.Progress.Seconds()
}

// ProgressPercent returns playback progress as a percentage (0-100).
func (s *PlaybackState) ProgressPercent() float64 {
	if s == nil || s.Track == nil || s.Track.Duration == 0 {
		return 0
	}
	return float64(s.Progress) / float64(s.Track.Duration) * 100
}
