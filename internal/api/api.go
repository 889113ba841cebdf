// Package api serves the uapibotd control API over a Unix socket.
package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/uapibot/uapibot/internal/stats"
	"github.com/uapibot/uapibot/pkg/protocol"
)

// Server serves the uapibotd control API over a Unix socket.
type Server struct {
	socketPath     string
	tracker        *stats.Tracker
	slackConnected func() bool
	startedAt      time.Time
	httpServer     *http.Server
	logger         zerolog.Logger
}

// New creates an API server. slackConnected reports whether the Socket
// Mode listener is up; pass a func returning false when chat is disabled.
func New(socketPath string, tracker *stats.Tracker, slackConnected func() bool, startedAt time.Time, logger zerolog.Logger) *Server {
	s := &Server{
		socketPath:     socketPath,
		tracker:        tracker,
		slackConnected: slackConnected,
		startedAt:      startedAt,
		logger:         logger.With().Str("component", "api").Logger(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/lookups", s.handleLookups)

	s.httpServer = &http.Server{Handler: mux}
	return s
}

// Start begins listening on the Unix socket. Blocks until Shutdown.
func (s *Server) Start() error {
	os.Remove(s.socketPath)

	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return err
	}
	os.Chmod(s.socketPath, 0600)

	s.logger.Info().Str("socket", s.socketPath).Msg("API server listening")
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	handled, errors := s.tracker.Totals()
	resp := protocol.StatusResponse{
		Status:         "ok",
		Uptime:         time.Since(s.startedAt).Truncate(time.Second).String(),
		NATSRunning:    true,
		SlackConnected: s.slackConnected(),
		StartedAt:      s.startedAt,
		LookupsHandled: handled,
		LookupErrors:   errors,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleLookups(w http.ResponseWriter, r *http.Request) {
	handled, errors := s.tracker.Totals()
	resp := protocol.LookupsResponse{
		Total:    handled,
		Errors:   errors,
		Commands: s.tracker.Counters(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
