// Package api exposes the simulator over HTTP: JSON endpoints for
// load/step/run/reset and the state snapshots, plus a websocket event
// stream per session.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

// Server is the HTTP API server
type Server struct {
	sessions    *SessionManager
	broadcaster *Broadcaster
	mux         *http.ServeMux
	server      *http.Server
	port        int

	version string
	commit  string
	date    string
}

// NewServer creates a new API server
func NewServer(port int) *Server {
	return NewServerWithVersion(port, "dev", "unknown", "unknown")
}

// NewServerWithVersion creates a server carrying build information
func NewServerWithVersion(port int, version, commit, date string) *Server {
	broadcaster := NewBroadcaster()

	s := &Server{
		sessions:    NewSessionManager(broadcaster),
		broadcaster: broadcaster,
		mux:         http.NewServeMux(),
		port:        port,
		version:     version,
		commit:      commit,
		date:        date,
	}

	s.registerRoutes()

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// registerRoutes wires up the endpoint table
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/api/version", s.handleVersion)
	s.mux.HandleFunc("/api/sessions", s.handleSessions)
	s.mux.HandleFunc("/api/sessions/", s.handleSession)
	s.mux.HandleFunc("/api/ws/", s.handleWebSocket)
}

// ListenAndServe starts serving; blocks until shutdown
func (s *Server) ListenAndServe() error {
	log.Printf("API server listening on port %d", s.port)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Sessions exposes the session manager (for tests)
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// Handler returns the HTTP handler (for tests)
func (s *Server) Handler() http.Handler {
	return s.mux
}

// writeJSON writes a JSON response with a status code
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, format string, args ...interface{}) {
	writeJSON(w, status, ErrorResponse{Error: fmt.Sprintf(format, args...)})
}

// splitSessionPath extracts the session ID and trailing action from a
// path like /api/sessions/<id>/<action>.
func splitSessionPath(path, prefix string) (id, action string) {
	rest := strings.TrimPrefix(path, prefix)
	parts := strings.SplitN(rest, "/", 2)
	id = parts[0]
	if len(parts) == 2 {
		action = parts[1]
	}
	return id, action
}
