package core

import "context"

// Player defines the control surface over the active music session.
type Player interface {
	// Playback control
	Play(ctx context.Context) error
	PlayURI(ctx context.Context, uris ...string) error
	Pause(ctx context.Context) error
	Next(ctx context.Context) error
	Prev(ctx context.Context) error
	Seek(ctx context.Context, positionMs int) error

	// Session settings
	Volume(ctx context.Context, percent int) error
	Shuffle(ctx context.Context, on bool) error
	Repeat(ctx context.Context, mode string) error

	// State queries
	GetState(ctx context.Context) (*PlaybackState, error)
	GetQueue(ctx context.Context) (*Queue, error)
	GetDevices(ctx context.Context) ([]Device, error)

	// Queue and device manipulation
	AddToQueue(ctx context.Context, trackURI string) error
	TransferPlayback(ctx context.Context, deviceID string, play bool) error
}
