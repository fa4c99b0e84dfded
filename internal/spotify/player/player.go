// Package player adapts the Spotify Web API client to the core.Player
// interface and the perception snapshot contract.
package player

import (
	"context"
	"time"

	"github.com/tessro/verse/internal/core"
	"github.com/tessro/verse/internal/perception"
	"github.com/tessro/verse/internal/spotify/client"
)

// Player implements core.Player for the Spotify session.
type Player struct {
	client   *client.Client
	deviceID string // optional target device for commands
}

// New creates a Player over a Spotify client.
func New(c *client.Client) *Player {
	return &Player{client: c}
}

// SetDevice targets playback commands at a specific device.
func (p *Player) SetDevice(deviceID string) {
	p.deviceID = deviceID
}

// Client exposes the underlying API client for operations outside the
// core.Player surface, such as search.
func (p *Player) Client() *client.Client {
	return p.client
}

// Play starts or resumes playback.
func (p *Player) Play(ctx context.Context) error {
	return p.client.Play(ctx, p.deviceID, nil)
}

// PlayURI starts playback of specific track URIs.
func (p *Player) PlayURI(ctx context.Context, uris ...string) error {
	return p.client.Play(ctx, p.deviceID, &client.PlayOptions{URIs: uris})
}

// Pause pauses playback.
func (p *Player) Pause(ctx context.Context) error {
	return p.client.Pause(ctx, p.deviceID)
}

// Next skips to the next track.
func (p *Player) Next(ctx context.Context) error {
	return p.client.Next(ctx, p.deviceID)
}

// Prev skips to the previous track.
func (p *Player) Prev(ctx context.Context) error {
	return p.client.Previous(ctx, p.deviceID)
}

// Seek seeks to a position in the current track.
func (p *Player) Seek(ctx context.Context, positionMs int) error {
	return p.client.Seek(ctx, positionMs, p.deviceID)
}

// Volume sets the playback volume (0-100).
func (p *Player) Volume(ctx context.Context, percent int) error {
	return p.client.SetVolume(ctx, percent, p.deviceID)
}

// Shuffle sets the shuffle mode.
func (p *Player) Shuffle(ctx context.Context, on bool) error {
	return p.client.SetShuffle(ctx, on, p.deviceID)
}

// Repeat sets the repeat mode (off, track, context).
func (p *Player) Repeat(ctx context.Context, mode string) error {
	return p.client.SetRepeat(ctx, mode, p.deviceID)
}

// GetState returns the current playback state.
func (p *Player) GetState(ctx context.Context) (*core.PlaybackState, error) {
	state, err := p.client.GetPlaybackState(ctx)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return &core.PlaybackState{}, nil
	}

	coreState := &core.PlaybackState{
		IsPlaying: state.IsPlaying,
		Progress:  time.Duration(state.ProgressMS) * time.Millisecond,
		Shuffle:   state.ShuffleState,
		Repeat:    state.RepeatState,
	}
	if state.Device.VolumePercent != nil {
		coreState.Volume = *state.Device.VolumePercent
	}
	if state.Device.ID != "" {
		coreState.Device = convertDevice(&state.Device)
	}
	if state.Item != nil {
		coreState.Track = convertTrack(state.Item)
	}
	return coreState, nil
}

// NowPlaying implements perception.SnapshotProvider. A session with nothing
// loaded yields a nil snapshot.
func (p *Player) NowPlaying(ctx context.Context) (*perception.Snapshot, error) {
	state, err := p.client.GetPlaybackState(ctx)
	if err != nil {
		return nil, err
	}
	if state == nil || state.Item == nil {
		return nil, nil
	}

	artists := make([]string, len(state.Item.Artists))
	for i, a := range state.Item.Artists {
		artists[i] = a.Name
	}

	return &perception.Snapshot{
		Title:      state.Item.Name,
		Artists:    artists,
		Album:      state.Item.Album.Name,
		ProgressMS: state.ProgressMS,
		DurationMS: state.Item.DurationMS,
		Playing:    state.IsPlaying,
	}, nil
}

// GetQueue returns the current playback queue, current track first.
func (p *Player) GetQueue(ctx context.Context) (*core.Queue, error) {
	queue, err := p.client.GetQueue(ctx)
	if err != nil {
		return nil, err
	}

	coreQueue := &core.Queue{
		Tracks: make([]core.Track, 0, len(queue.Queue)+1),
	}
	if queue.CurrentlyPlaying != nil {
		coreQueue.Tracks = append(coreQueue.Tracks, *convertTrack(queue.CurrentlyPlaying))
	}
	for i := range queue.Queue {
		coreQueue.Tracks = append(coreQueue.Tracks, *convertTrack(&queue.Queue[i]))
	}
	return coreQueue, nil
}

// GetDevices returns the session's available devices.
func (p *Player) GetDevices(ctx context.Context) ([]core.Device, error) {
	devices, err := p.client.GetDevices(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]core.Device, len(devices))
	for i := range devices {
		out[i] = *convertDevice(&devices[i])
	}
	return out, nil
}

// AddToQueue adds a track to the playback queue.
func (p *Player) AddToQueue(ctx context.Context, trackURI string) error {
	return p.client.AddToQueue(ctx, trackURI, p.deviceID)
}

// TransferPlayback moves playback to a different device.
func (p *Player) TransferPlayback(ctx context.Context, deviceID string, play bool) error {
	return p.client.TransferPlayback(ctx, deviceID, play)
}

func convertTrack(t *client.Track) *core.Track {
	artists := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = a.Name
	}

	track := &core.Track{
		ID:       t.ID,
		URI:      t.URI,
		Title:    t.Name,
		Artists:  artists,
		Album:    t.Album.Name,
		Duration: time.Duration(t.DurationMS) * time.Millisecond,
	}
	if len(artists) > 0 {
		track.Artist = artists[0]
	}
	return track
}

func convertDevice(d *client.Device) *core.Device {
	device := &core.Device{
		ID:       d.ID,
		Name:     d.Name,
		Type:     d.Type,
		IsActive: d.IsActive,
	}
	if d.VolumePercent != nil {
		device.Volume = *d.VolumePercent
	}
	return device
}
