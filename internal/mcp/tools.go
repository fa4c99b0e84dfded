package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tessro/verse/internal/perception"
	"github.com/tessro/verse/internal/spotify/client"
)

type toolHandler func(context.Context, map[string]interface{}) (toolResult, *toolError)

type toolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
	handler     toolHandler
}

type toolResult struct {
	Content           []contentItem `json:"content"`
	StructuredContent interface{}   `json:"structuredContent,omitempty"`
	IsError           bool          `json:"isError,omitempty"`
}

type contentItem struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type toolError struct {
	Code    string
	Message string
}

type toolsCallParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
}

func (s *Server) buildToolRegistry() (map[string]toolDefinition, []string) {
	defs := []toolDefinition{
		{
			Name: "now_playing",
			Description: "Current playback snapshot: track, artist, album, progress, " +
				"and when synced lyrics exist, the active lyric line plus upcoming lines.",
			InputSchema: objectSchema(nil, nil),
			handler:     s.handleNowPlaying,
		},
		{
			Name:        "playback_play",
			Description: "Start or resume playback. Pass track URIs to play specific tracks.",
			InputSchema: objectSchema(map[string]interface{}{
				"uris": arraySchema("string", "Spotify track URIs to play instead of resuming"),
			}, nil),
			handler: s.handlePlay,
		},
		{
			Name:        "playback_pause",
			Description: "Pause playback.",
			InputSchema: objectSchema(nil, nil),
			handler:     s.handlePause,
		},
		{
			Name:        "playback_next",
			Description: "Skip to the next track.",
			InputSchema: objectSchema(nil, nil),
			handler:     s.handleNext,
		},
		{
			Name:        "playback_previous",
			Description: "Skip to the previous track.",
			InputSchema: objectSchema(nil, nil),
			handler:     s.handlePrevious,
		},
		{
			Name:        "playback_seek",
			Description: "Seek to a position in the current track.",
			InputSchema: objectSchema(map[string]interface{}{
				"position_ms": numberSchema("Target position in milliseconds"),
			}, []string{"position_ms"}),
			handler: s.handleSeek,
		},
		{
			Name:        "playback_set_volume",
			Description: "Set the playback volume.",
			InputSchema: objectSchema(map[string]interface{}{
				"percent": numberSchema("Volume from 0 to 100"),
			}, []string{"percent"}),
			handler: s.handleSetVolume,
		},
		{
			Name:        "playback_set_shuffle",
			Description: "Turn shuffle on or off.",
			InputSchema: objectSchema(map[string]interface{}{
				"state": boolSchema("Shuffle enabled"),
			}, []string{"state"}),
			handler: s.handleSetShuffle,
		},
		{
			Name:        "playback_set_repeat",
			Description: "Set the repeat mode.",
			InputSchema: objectSchema(map[string]interface{}{
				"mode": enumSchema("Repeat mode", "off", "track", "context"),
			}, []string{"mode"}),
			handler: s.handleSetRepeat,
		},
		{
			Name:        "search",
			Description: "Search the catalog for tracks, artists, albums or playlists.",
			InputSchema: objectSchema(map[string]interface{}{
				"query": stringSchema("Search query"),
				"types": arraySchema("string", "Content types: track, artist, album, playlist (default track)"),
				"limit": numberSchema("Maximum results per type (default 10)"),
			}, []string{"query"}),
			handler: s.handleSearch,
		},
		{
			Name:        "queue_get",
			Description: "The playback queue: current track and what comes next.",
			InputSchema: objectSchema(nil, nil),
			handler:     s.handleQueueGet,
		},
		{
			Name:        "queue_add",
			Description: "Add a track to the playback queue.",
			InputSchema: objectSchema(map[string]interface{}{
				"uri": stringSchema("Spotify track URI"),
			}, []string{"uri"}),
			handler: s.handleQueueAdd,
		},
		{
			Name:        "devices_list",
			Description: "List available playback devices.",
			InputSchema: objectSchema(nil, nil),
			handler:     s.handleDevicesList,
		},
		{
			Name:        "devices_transfer",
			Description: "Transfer playback to another device.",
			InputSchema: objectSchema(map[string]interface{}{
				"device_id": stringSchema("Target device ID"),
				"play":      boolSchema("Start playing after the transfer"),
			}, []string{"device_id"}),
			handler: s.handleDevicesTransfer,
		},
		{
			Name: "get_lyrics",
			Description: "Full lyrics for a track. Defaults to the currently playing track " +
				"when title and artist are omitted.",
			InputSchema: objectSchema(map[string]interface{}{
				"title":  stringSchema("Track title"),
				"artist": stringSchema("Primary artist name"),
			}, nil),
			handler: s.handleGetLyrics,
		},
		{
			Name: "audio_features",
			Description: "Audio-analysis summary (tempo, key, energy, ...) for a track. " +
				"Defaults to the currently playing track.",
			InputSchema: objectSchema(map[string]interface{}{
				"track_id": stringSchema("Spotify track ID"),
			}, nil),
			handler: s.handleAudioFeatures,
		},
	}

	tools := make(map[string]toolDefinition, len(defs))
	order := make([]string, 0, len(defs))
	for _, def := range defs {
		tools[def.Name] = def
		order = append(order, def.Name)
	}
	return tools, order
}

func (s *Server) handleToolsList(id json.RawMessage) {
	tools := make([]toolDefinition, 0, len(s.order))
	for _, name := range s.order {
		tools = append(tools, s.tools[name])
	}
	s.writeResult(id, map[string]interface{}{"tools": tools})
}

func (s *Server) handleToolsCall(ctx context.Context, req *request) {
	var params toolsCallParams
	if len(req.Params) == 0 || json.Unmarshal(req.Params, &params) != nil || strings.TrimSpace(params.Name) == "" {
		s.writeError(req.ID, codeInvalidRequest, "tools/call requires params.name")
		return
	}
	if params.Arguments == nil {
		params.Arguments = map[string]interface{}{}
	}

	tool, ok := s.tools[params.Name]
	if !ok {
		s.writeResult(req.ID, errorResult(toolError{
			Code:    "UNKNOWN_TOOL",
			Message: fmt.Sprintf("unknown tool: %s", params.Name),
		}))
		return
	}

	callID := uuid.NewString()
	log := s.log.With().Str("tool", params.Name).Str("call_id", callID).Logger()
	log.Info().Msg("tool call")

	result, toolErr := tool.handler(ctx, params.Arguments)
	if toolErr != nil {
		log.Warn().Str("code", toolErr.Code).Str("error", toolErr.Message).Msg("tool call failed")
		s.writeResult(req.ID, errorResult(*toolErr))
		return
	}
	s.writeResult(req.ID, result)
}

func errorResult(toolErr toolError) toolResult {
	return toolResult{
		IsError: true,
		Content: []contentItem{
			{Type: "text", Text: fmt.Sprintf("ERROR: %s: %s", toolErr.Code, toolErr.Message)},
		},
		StructuredContent: map[string]interface{}{
			"error": map[string]interface{}{
				"code":    toolErr.Code,
				"message": toolErr.Message,
			},
		},
	}
}

func textResult(text string, structured interface{}) toolResult {
	return toolResult{
		Content:           []contentItem{{Type: "text", Text: text}},
		StructuredContent: structured,
	}
}

func upstreamError(err error) *toolError {
	return &toolError{Code: "UPSTREAM_ERROR", Message: err.Error()}
}

// --- playback and session tools ---

func (s *Server) handleNowPlaying(ctx context.Context, _ map[string]interface{}) (toolResult, *toolError) {
	res, err := s.perceiver.Perceive(ctx)
	if err != nil {
		return toolResult{}, upstreamError(err)
	}
	return textResult(describePerception(res), res), nil
}

func (s *Server) handlePlay(ctx context.Context, args map[string]interface{}) (toolResult, *toolError) {
	uris, argErr := optionalStringSlice(args, "uris")
	if argErr != nil {
		return toolResult{}, argErr
	}

	var err error
	if len(uris) > 0 {
		err = s.player.PlayURI(ctx, uris...)
	} else {
		err = s.player.Play(ctx)
	}
	if err != nil {
		return toolResult{}, upstreamError(err)
	}
	return textResult("playback started", nil), nil
}

func (s *Server) handlePause(ctx context.Context, _ map[string]interface{}) (toolResult, *toolError) {
	if err := s.player.Pause(ctx); err != nil {
		return toolResult{}, upstreamError(err)
	}
	return textResult("playback paused", nil), nil
}

func (s *Server) handleNext(ctx context.Context, _ map[string]interface{}) (toolResult, *toolError) {
	if err := s.player.Next(ctx); err != nil {
		return toolResult{}, upstreamError(err)
	}
	return textResult("skipped to next track", nil), nil
}

func (s *Server) handlePrevious(ctx context.Context, _ map[string]interface{}) (toolResult, *toolError) {
	if err := s.player.Prev(ctx); err != nil {
		return toolResult{}, upstreamError(err)
	}
	return textResult("skipped to previous track", nil), nil
}

func (s *Server) handleSeek(ctx context.Context, args map[string]interface{}) (toolResult, *toolError) {
	positionMs, argErr := requiredInt(args, "position_ms")
	if argErr != nil {
		return toolResult{}, argErr
	}
	if positionMs < 0 {
		return toolResult{}, &toolError{Code: "INVALID_RANGE", Message: "position_ms must be >= 0"}
	}
	if err := s.player.Seek(ctx, positionMs); err != nil {
		return toolResult{}, upstreamError(err)
	}
	return textResult(fmt.Sprintf("seeked to %dms", positionMs), nil), nil
}

func (s *Server) handleSetVolume(ctx context.Context, args map[string]interface{}) (toolResult, *toolError) {
	percent, argErr := requiredInt(args, "percent")
	if argErr != nil {
		return toolResult{}, argErr
	}
	if percent < 0 || percent > 100 {
		return toolResult{}, &toolError{Code: "INVALID_RANGE", Message: "percent must be between 0 and 100"}
	}
	if err := s.player.Volume(ctx, percent); err != nil {
		return toolResult{}, upstreamError(err)
	}
	return textResult(fmt.Sprintf("volume set to %d%%", percent), nil), nil
}

func (s *Server) handleSetShuffle(ctx context.Context, args map[string]interface{}) (toolResult, *toolError) {
	state, argErr := requiredBool(args, "state")
	if argErr != nil {
		return toolResult{}, argErr
	}
	if err := s.player.Shuffle(ctx, state); err != nil {
		return toolResult{}, upstreamError(err)
	}
	return textResult(fmt.Sprintf("shuffle set to %t", state), nil), nil
}

func (s *Server) handleSetRepeat(ctx context.Context, args map[string]interface{}) (toolResult, *toolError) {
	mode, argErr := requiredString(args, "mode")
	if argErr != nil {
		return toolResult{}, argErr
	}
	switch mode {
	case "off", "track", "context":
	default:
		return toolResult{}, &toolError{Code: "INVALID_FIELD", Message: "mode must be off, track or context"}
	}
	if err := s.player.Repeat(ctx, mode); err != nil {
		return toolResult{}, upstreamError(err)
	}
	return textResult("repeat mode set to "+mode, nil), nil
}

func (s *Server) handleSearch(ctx context.Context, args map[string]interface{}) (toolResult, *toolError) {
	query, argErr := requiredString(args, "query")
	if argErr != nil {
		return toolResult{}, argErr
	}
	rawTypes, argErr := optionalStringSlice(args, "types")
	if argErr != nil {
		return toolResult{}, argErr
	}
	limit, argErr := optionalInt(args, "limit", 10)
	if argErr != nil {
		return toolResult{}, argErr
	}

	types := make([]client.SearchType, len(rawTypes))
	for i, t := range rawTypes {
		types[i] = client.SearchType(t)
	}

	resp, err := s.search.Search(ctx, client.SearchOptions{Query: query, Types: types, Limit: limit})
	if err != nil {
		return toolResult{}, upstreamError(err)
	}

	total := 0
	if resp.Tracks != nil {
		total += len(resp.Tracks.Items)
	}
	if resp.Artists != nil {
		total += len(resp.Artists.Items)
	}
	if resp.Albums != nil {
		total += len(resp.Albums.Items)
	}
	if resp.Playlists != nil {
		total += len(resp.Playlists.Items)
	}
	return textResult(fmt.Sprintf("%d results for %q", total, query), resp), nil
}

func (s *Server) handleQueueGet(ctx context.Context, _ map[string]interface{}) (toolResult, *toolError) {
	queue, err := s.player.GetQueue(ctx)
	if err != nil {
		return toolResult{}, upstreamError(err)
	}
	return textResult(fmt.Sprintf("%d tracks in queue", queue.Len()), queue), nil
}

func (s *Server) handleQueueAdd(ctx context.Context, args map[string]interface{}) (toolResult, *toolError) {
	uri, argErr := requiredString(args, "uri")
	if argErr != nil {
		return toolResult{}, argErr
	}
	if err := s.player.AddToQueue(ctx, uri); err != nil {
		return toolResult{}, upstreamError(err)
	}
	return textResult("added to queue: "+uri, nil), nil
}

func (s *Server) handleDevicesList(ctx context.Context, _ map[string]interface{}) (toolResult, *toolError) {
	devices, err := s.player.GetDevices(ctx)
	if err != nil {
		return toolResult{}, upstreamError(err)
	}
	return textResult(fmt.Sprintf("%d devices available", len(devices)), map[string]interface{}{
		"devices": devices,
	}), nil
}

func (s *Server) handleDevicesTransfer(ctx context.Context, args map[string]interface{}) (toolResult, *toolError) {
	deviceID, argErr := requiredString(args, "device_id")
	if argErr != nil {
		return toolResult{}, argErr
	}
	play, argErr := optionalBool(args, "play", false)
	if argErr != nil {
		return toolResult{}, argErr
	}
	if err := s.player.TransferPlayback(ctx, deviceID, play); err != nil {
		return toolResult{}, upstreamError(err)
	}
	return textResult("playback transferred to "+deviceID, nil), nil
}

func (s *Server) handleGetLyrics(ctx context.Context, args map[string]interface{}) (toolResult, *toolError) {
	title, argErr := optionalString(args, "title")
	if argErr != nil {
		return toolResult{}, argErr
	}
	artist, argErr := optionalString(args, "artist")
	if argErr != nil {
		return toolResult{}, argErr
	}

	if title == "" {
		state, err := s.player.GetState(ctx)
		if err != nil {
			return toolResult{}, upstreamError(err)
		}
		if !state.HasTrack() {
			return textResult("nothing is playing and no track was specified", map[string]interface{}{
				"found": false,
			}), nil
		}
		title = state.Track.Title
		artist = state.Track.Artist
	}

	lyr, err := s.lyrics.Lookup(ctx, title, artist)
	if err != nil {
		return toolResult{}, upstreamError(err)
	}
	if lyr == nil {
		return textResult(fmt.Sprintf("no lyrics found for %q by %q", title, artist), map[string]interface{}{
			"found": false,
		}), nil
	}

	text := lyr.Plain
	if text == "" && lyr.Instrumental {
		text = "(instrumental)"
	}
	return textResult(text, map[string]interface{}{
		"found":        true,
		"track":        lyr.TrackName,
		"artist":       lyr.ArtistName,
		"album":        lyr.AlbumName,
		"instrumental": lyr.Instrumental,
		"plain_lyrics": lyr.Plain,
		"has_synced":   strings.TrimSpace(lyr.Synced) != "",
	}), nil
}

func (s *Server) handleAudioFeatures(ctx context.Context, args map[string]interface{}) (toolResult, *toolError) {
	trackID, argErr := optionalString(args, "track_id")
	if argErr != nil {
		return toolResult{}, argErr
	}

	if trackID == "" {
		state, err := s.player.GetState(ctx)
		if err != nil {
			return toolResult{}, upstreamError(err)
		}
		if !state.HasTrack() {
			return toolResult{}, &toolError{Code: "NO_TRACK", Message: "nothing is playing and no track_id was specified"}
		}
		trackID = state.Track.ID
	}

	features, err := s.features.GetAudioFeatures(ctx, trackID)
	if err != nil {
		return toolResult{}, upstreamError(err)
	}
	return textResult(
		fmt.Sprintf("tempo %.1f bpm, energy %.2f, valence %.2f", features.Tempo, features.Energy, features.Valence),
		features,
	), nil
}

// describePerception renders a one-line summary for the text content slot.
func describePerception(res *perception.Result) string {
	if res.Title == "" {
		return "nothing is playing"
	}

	verb := "paused"
	if res.Playing {
		verb = "playing"
	}
	summary := fmt.Sprintf("%s: %q by %s", verb, res.Title, res.Artist)
	if res.CurrentLine != nil {
		summary += fmt.Sprintf(" | lyric: %s", strings.TrimSpace(res.CurrentLine.Text))
	}
	return summary
}
