package mcp

import (
	"fmt"
	"testing"

	"github.com/tessro/verse/internal/core"
)

func callTool(t *testing.T, srv *Server, name, args string) map[string]interface{} {
	t.Helper()
	if args == "" {
		args = "{}"
	}
	frame := fmt.Sprintf(
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":%q,"arguments":%s}}`,
		name, args)
	responses := roundTrip(t, srv, frame)
	if len(responses) != 1 {
		t.Fatalf("got %d responses, want 1", len(responses))
	}
	if responses[0].Error != nil {
		t.Fatalf("unexpected protocol error: %+v", responses[0].Error)
	}
	return resultMap(t, responses[0])
}

func structured(t *testing.T, result map[string]interface{}) map[string]interface{} {
	t.Helper()
	sc, ok := result["structuredContent"].(map[string]interface{})
	if !ok {
		t.Fatalf("structuredContent missing: %v", result)
	}
	return sc
}

func TestNowPlayingTool(t *testing.T) {
	srv, _ := newTestServer(t)
	result := callTool(t, srv, "now_playing", "")

	sc := structured(t, result)
	if sc["playing"] != true || sc["title"] != "Holocene" {
		t.Errorf("structuredContent = %v, want playing Holocene", sc)
	}
	if sc["lyric_status"] != "synced" {
		t.Errorf("lyric_status = %v, want synced", sc["lyric_status"])
	}
	line, ok := sc["current_line"].(map[string]interface{})
	if !ok || line["text"] != "and at once I knew" {
		t.Errorf("current_line = %v", sc["current_line"])
	}
}

func TestPlayTool(t *testing.T) {
	srv, player := newTestServer(t)

	callTool(t, srv, "playback_play", "")
	if !player.played {
		t.Error("playback_play without uris did not resume")
	}

	callTool(t, srv, "playback_play", `{"uris":["spotify:track:abc"]}`)
	if len(player.playedURIs) != 1 || player.playedURIs[0] != "spotify:track:abc" {
		t.Errorf("playedURIs = %v", player.playedURIs)
	}
}

func TestPauseTool(t *testing.T) {
	srv, player := newTestServer(t)
	callTool(t, srv, "playback_pause", "")
	if !player.paused {
		t.Error("playback_pause did not pause")
	}
}

func TestSeekTool(t *testing.T) {
	srv, player := newTestServer(t)

	callTool(t, srv, "playback_seek", `{"position_ms":45000}`)
	if player.seekedTo != 45000 {
		t.Errorf("seekedTo = %d, want 45000", player.seekedTo)
	}

	result := callTool(t, srv, "playback_seek", `{"position_ms":-1}`)
	if result["isError"] != true {
		t.Error("negative position_ms must be rejected")
	}

	result = callTool(t, srv, "playback_seek", "{}")
	if result["isError"] != true {
		t.Error("missing position_ms must be rejected")
	}
}

func TestSetVolumeToolRange(t *testing.T) {
	srv, player := newTestServer(t)

	callTool(t, srv, "playback_set_volume", `{"percent":65}`)
	if player.volume != 65 {
		t.Errorf("volume = %d, want 65", player.volume)
	}

	result := callTool(t, srv, "playback_set_volume", `{"percent":120}`)
	if result["isError"] != true {
		t.Error("out-of-range percent must be rejected")
	}
}

func TestSetShuffleTool(t *testing.T) {
	srv, player := newTestServer(t)
	callTool(t, srv, "playback_set_shuffle", `{"state":true}`)
	if !player.shuffle {
		t.Error("shuffle was not enabled")
	}
}

func TestSetRepeatTool(t *testing.T) {
	srv, player := newTestServer(t)

	callTool(t, srv, "playback_set_repeat", `{"mode":"track"}`)
	if player.repeat != "track" {
		t.Errorf("repeat = %q, want track", player.repeat)
	}

	result := callTool(t, srv, "playback_set_repeat", `{"mode":"loop"}`)
	if result["isError"] != true {
		t.Error("invalid repeat mode must be rejected")
	}
}

func TestSearchTool(t *testing.T) {
	srv, _ := newTestServer(t)

	result := callTool(t, srv, "search", `{"query":"bon iver","types":["track","album"],"limit":5}`)
	sc := structured(t, result)
	if _, ok := sc["tracks"]; !ok {
		t.Errorf("structuredContent = %v, want tracks", sc)
	}

	searcher := srv.search.(*fakeSearcher)
	if searcher.lastOpts.Query != "bon iver" || searcher.lastOpts.Limit != 5 {
		t.Errorf("search opts = %+v", searcher.lastOpts)
	}
	if len(searcher.lastOpts.Types) != 2 {
		t.Errorf("search types = %v, want 2 entries", searcher.lastOpts.Types)
	}

	result = callTool(t, srv, "search", "{}")
	if result["isError"] != true {
		t.Error("search without query must be rejected")
	}
}

func TestQueueTools(t *testing.T) {
	srv, player := newTestServer(t)

	result := callTool(t, srv, "queue_get", "")
	sc := structured(t, result)
	tracks, ok := sc["tracks"].([]interface{})
	if !ok || len(tracks) != 2 {
		t.Errorf("queue tracks = %v, want 2", sc["tracks"])
	}

	callTool(t, srv, "queue_add", `{"uri":"spotify:track:xyz"}`)
	if player.queuedURI != "spotify:track:xyz" {
		t.Errorf("queuedURI = %q", player.queuedURI)
	}
}

func TestDeviceTools(t *testing.T) {
	srv, player := newTestServer(t)

	result := callTool(t, srv, "devices_list", "")
	sc := structured(t, result)
	devices, ok := sc["devices"].([]interface{})
	if !ok || len(devices) != 1 {
		t.Fatalf("devices = %v, want 1", sc["devices"])
	}

	callTool(t, srv, "devices_transfer", `{"device_id":"d1","play":true}`)
	if player.transferred != "d1" {
		t.Errorf("transferred = %q, want d1", player.transferred)
	}
}

func TestGetLyricsDefaultsToCurrentTrack(t *testing.T) {
	srv, _ := newTestServer(t)

	result := callTool(t, srv, "get_lyrics", "")
	sc := structured(t, result)
	if sc["found"] != true || sc["track"] != "Holocene" {
		t.Errorf("structuredContent = %v", sc)
	}
}

func TestGetLyricsNothingPlaying(t *testing.T) {
	srv, player := newTestServer(t)
	player.state = &core.PlaybackState{}

	result := callTool(t, srv, "get_lyrics", "")
	sc := structured(t, result)
	if sc["found"] != false {
		t.Errorf("structuredContent = %v, want found false", sc)
	}
}

func TestAudioFeaturesDefaultsToCurrentTrack(t *testing.T) {
	srv, _ := newTestServer(t)

	result := callTool(t, srv, "audio_features", "")
	sc := structured(t, result)
	if sc["tempo"] != 73.5 {
		t.Errorf("tempo = %v, want 73.5", sc["tempo"])
	}

	features := srv.features.(*fakeFeatureSource)
	if features.lastID != "t1" {
		t.Errorf("lastID = %q, want t1 (current track)", features.lastID)
	}
}
