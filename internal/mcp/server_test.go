package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tessro/verse/internal/core"
	"github.com/tessro/verse/internal/lyrics"
	"github.com/tessro/verse/internal/perception"
	"github.com/tessro/verse/internal/spotify/client"
)

type fakePlayer struct {
	state *core.PlaybackState
	queue *core.Queue

	played      bool
	playedURIs  []string
	paused      bool
	seekedTo    int
	volume      int
	shuffle     bool
	repeat      string
	queuedURI   string
	transferred string
}

func (f *fakePlayer) Play(ctx context.Context) error { f.played = true; return nil }

func (f *fakePlayer) PlayURI(ctx context.Context, uris ...string) error {
	f.playedURIs = uris
	return nil
}

func (f *fakePlayer) Pause(ctx context.Context) error { f.paused = true; return nil }
func (f *fakePlayer) Next(ctx context.Context) error  { return nil }
func (f *fakePlayer) Prev(ctx context.Context) error  { return nil }

func (f *fakePlayer) Seek(ctx context.Context, positionMs int) error {
	f.seekedTo = positionMs
	return nil
}

func (f *fakePlayer) Volume(ctx context.Context, percent int) error {
	f.volume = percent
	return nil
}

func (f *fakePlayer) Shuffle(ctx context.Context, on bool) error { f.shuffle = on; return nil }
func (f *fakePlayer) Repeat(ctx context.Context, mode string) error {
	f.repeat = mode
	return nil
}

func (f *fakePlayer) GetState(ctx context.Context) (*core.PlaybackState, error) {
	return f.state, nil
}

func (f *fakePlayer) GetQueue(ctx context.Context) (*core.Queue, error) {
	return f.queue, nil
}

func (f *fakePlayer) GetDevices(ctx context.Context) ([]core.Device, error) {
	return []core.Device{{ID: "d1", Name: "Kitchen", IsActive: true}}, nil
}

func (f *fakePlayer) AddToQueue(ctx context.Context, trackURI string) error {
	f.queuedURI = trackURI
	return nil
}

func (f *fakePlayer) TransferPlayback(ctx context.Context, deviceID string, play bool) error {
	f.transferred = deviceID
	return nil
}

type fakePerceiver struct {
	result *perception.Result
	err    error
}

func (f *fakePerceiver) Perceive(ctx context.Context) (*perception.Result, error) {
	return f.result, f.err
}

type fakeSearcher struct {
	lastOpts client.SearchOptions
	resp     *client.SearchResponse
}

func (f *fakeSearcher) Search(ctx context.Context, opts client.SearchOptions) (*client.SearchResponse, error) {
	f.lastOpts = opts
	return f.resp, nil
}

type fakeLyricSource struct {
	lyrics *perception.Lyrics
}

func (f *fakeLyricSource) Lookup(ctx context.Context, title, artist string) (*perception.Lyrics, error) {
	return f.lyrics, nil
}

type fakeFeatureSource struct {
	lastID   string
	features *client.AudioFeatures
}

func (f *fakeFeatureSource) GetAudioFeatures(ctx context.Context, trackID string) (*client.AudioFeatures, error) {
	f.lastID = trackID
	return f.features, nil
}

func newTestServer(t *testing.T) (*Server, *fakePlayer) {
	t.Helper()

	player := &fakePlayer{
		state: &core.PlaybackState{
			Track:     &core.Track{ID: "t1", Title: "Holocene", Artist: "Bon Iver"},
			IsPlaying: true,
		},
		queue: &core.Queue{Tracks: []core.Track{{Title: "Holocene"}, {Title: "Towers"}}},
	}

	srv := NewServer(Options{
		Name:    "verse",
		Version: "test",
		Player:  player,
		Perceiver: &fakePerceiver{result: &perception.Result{
			Playing:     true,
			Title:       "Holocene",
			Artist:      "Bon Iver",
			LyricStatus: perception.StatusSynced,
			CurrentLine: &lyrics.Line{Offset: 12, Text: "and at once I knew"},
		}},
		Search: &fakeSearcher{resp: &client.SearchResponse{
			Tracks: &client.Paging[client.Track]{Items: []client.Track{{Name: "Holocene"}}},
		}},
		Lyrics: &fakeLyricSource{lyrics: &perception.Lyrics{
			TrackName:  "Holocene",
			ArtistName: "Bon Iver",
			Plain:      "and at once I knew",
		}},
		Features: &fakeFeatureSource{features: &client.AudioFeatures{ID: "t1", Tempo: 73.5}},
		Log:      zerolog.Nop(),
	})
	return srv, player
}

// roundTrip feeds one frame per input line and returns the decoded responses.
func roundTrip(t *testing.T, srv *Server, frames ...string) []response {
	t.Helper()

	in := strings.NewReader(strings.Join(frames, "\n") + "\n")
	var out bytes.Buffer
	if err := srv.Serve(context.Background(), in, &out); err != nil {
		t.Fatalf("Serve() error: %v", err)
	}

	var responses []response
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" {
			continue
		}
		var resp response
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			t.Fatalf("invalid response frame %q: %v", line, err)
		}
		responses = append(responses, resp)
	}
	return responses
}

func resultMap(t *testing.T, resp response) map[string]interface{} {
	t.Helper()
	data, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	return m
}

func TestInitialize(t *testing.T) {
	srv, _ := newTestServer(t)
	responses := roundTrip(t, srv, `{"jsonrpc":"2.0","id":1,"method":"initialize"}`)
	if len(responses) != 1 {
		t.Fatalf("got %d responses, want 1", len(responses))
	}

	result := resultMap(t, responses[0])
	if got := result["protocolVersion"]; got != protocolVersion {
		t.Errorf("protocolVersion = %v, want %s", got, protocolVersion)
	}
	info, ok := result["serverInfo"].(map[string]interface{})
	if !ok || info["name"] != "verse" {
		t.Errorf("serverInfo = %v, want name verse", result["serverInfo"])
	}
}

func TestNotificationGetsNoResponse(t *testing.T) {
	srv, _ := newTestServer(t)
	responses := roundTrip(t, srv,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
	)
	if len(responses) != 1 {
		t.Fatalf("got %d responses, want 1 (notification must be silent)", len(responses))
	}
}

func TestUnknownMethod(t *testing.T) {
	srv, _ := newTestServer(t)
	responses := roundTrip(t, srv, `{"jsonrpc":"2.0","id":3,"method":"bogus/method"}`)
	if len(responses) != 1 || responses[0].Error == nil {
		t.Fatalf("want a single error response, got %+v", responses)
	}
	if responses[0].Error.Code != codeMethodNotFound {
		t.Errorf("error code = %d, want %d", responses[0].Error.Code, codeMethodNotFound)
	}
}

func TestInvalidJSON(t *testing.T) {
	srv, _ := newTestServer(t)
	responses := roundTrip(t, srv, `{not json`)
	if len(responses) != 1 || responses[0].Error == nil {
		t.Fatalf("want a single error response, got %+v", responses)
	}
	if responses[0].Error.Code != codeParseError {
		t.Errorf("error code = %d, want %d", responses[0].Error.Code, codeParseError)
	}
}

func TestToolsList(t *testing.T) {
	srv, _ := newTestServer(t)
	responses := roundTrip(t, srv, `{"jsonrpc":"2.0","id":4,"method":"tools/list"}`)

	result := resultMap(t, responses[0])
	tools, ok := result["tools"].([]interface{})
	if !ok {
		t.Fatalf("tools missing from result: %v", result)
	}
	if len(tools) != len(srv.order) {
		t.Fatalf("listed %d tools, want %d", len(tools), len(srv.order))
	}

	first, ok := tools[0].(map[string]interface{})
	if !ok {
		t.Fatalf("tool entry is not an object: %v", tools[0])
	}
	if first["name"] != srv.order[0] {
		t.Errorf("first tool = %v, want %s (registry order must be stable)", first["name"], srv.order[0])
	}
	if _, ok := first["inputSchema"].(map[string]interface{}); !ok {
		t.Errorf("tool %v has no inputSchema", first["name"])
	}
}

func TestToolsCallMissingName(t *testing.T) {
	srv, _ := newTestServer(t)
	responses := roundTrip(t, srv, `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{}}`)
	if len(responses) != 1 || responses[0].Error == nil {
		t.Fatalf("want a protocol error, got %+v", responses)
	}
}

func TestToolsCallUnknownTool(t *testing.T) {
	srv, _ := newTestServer(t)
	responses := roundTrip(t, srv,
		`{"jsonrpc":"2.0","id":6,"method":"tools/call","params":{"name":"no_such_tool"}}`)

	result := resultMap(t, responses[0])
	if result["isError"] != true {
		t.Fatalf("unknown tool must yield an isError result, got %v", result)
	}
}
