// Package mcp implements a Model Context Protocol server over stdio,
// exposing the music session as a set of callable tools.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tessro/verse/internal/core"
	"github.com/tessro/verse/internal/perception"
	"github.com/tessro/verse/internal/spotify/client"
)

const protocolVersion = "2024-11-05"

// maxLineBytes bounds one JSON-RPC frame on stdin.
const maxLineBytes = 1 << 20

// Perceiver assembles the now-playing view with lyric augmentation.
type Perceiver interface {
	Perceive(ctx context.Context) (*perception.Result, error)
}

// Searcher runs catalog searches.
type Searcher interface {
	Search(ctx context.Context, opts client.SearchOptions) (*client.SearchResponse, error)
}

// FeatureSource fetches the audio-analysis summary for a track.
type FeatureSource interface {
	GetAudioFeatures(ctx context.Context, trackID string) (*client.AudioFeatures, error)
}

// Server speaks JSON-RPC 2.0 over a reader/writer pair, one frame per line.
// Logs never touch the output stream; stdout belongs to the protocol.
type Server struct {
	name    string
	version string

	player    core.Player
	perceiver Perceiver
	search    Searcher
	lyrics    perception.Source
	features  FeatureSource

	tools map[string]toolDefinition
	order []string

	writeMu sync.Mutex
	out     io.Writer
	log     zerolog.Logger
}

// Options wires a Server's collaborators.
type Options struct {
	Name      string
	Version   string
	Player    core.Player
	Perceiver Perceiver
	Search    Searcher
	Lyrics    perception.Source
	Features  FeatureSource
	Log       zerolog.Logger
}

// NewServer creates a Server and registers its tool set.
func NewServer(opts Options) *Server {
	s := &Server{
		name:      opts.Name,
		version:   opts.Version,
		player:    opts.Player,
		perceiver: opts.Perceiver,
		search:    opts.Search,
		lyrics:    opts.Lyrics,
		features:  opts.Features,
		log:       opts.Log.With().Str("component", "mcp").Logger(),
	}
	s.tools, s.order = s.buildToolRegistry()
	return s
}

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
)

// Serve reads frames from in until EOF or context cancellation.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.out = out

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeError(nil, codeParseError, "invalid JSON")
			continue
		}
		s.dispatch(ctx, &req)
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return fmt.Errorf("stdin read failed: %w", err)
	}
	return nil
}

func (s *Server) dispatch(ctx context.Context, req *request) {
	s.log.Debug().Str("method", req.Method).Msg("request")

	switch req.Method {
	case "initialize":
		s.writeResult(req.ID, map[string]interface{}{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    s.name,
				"version": s.version,
			},
		})
	case "notifications/initialized", "notifications/cancelled":
		// Notifications get no response.
	case "ping":
		s.writeResult(req.ID, map[string]interface{}{})
	case "tools/list":
		s.handleToolsList(req.ID)
	case "tools/call":
		s.handleToolsCall(ctx, req)
	default:
		if req.ID == nil {
			return // unknown notification
		}
		s.writeError(req.ID, codeMethodNotFound, fmt.Sprintf("unknown method: %s", req.Method))
	}
}

func (s *Server) writeResult(id json.RawMessage, result interface{}) {
	s.write(response{JSONRPC: "2.0", ID: id, Result: result})
}

func (s *Server) writeError(id json.RawMessage, code int, message string) {
	s.write(response{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: message}})
}

func (s *Server) write(resp response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to marshal response")
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, _ = s.out.Write(append(data, '\n'))
}
