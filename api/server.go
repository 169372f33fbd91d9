package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/duelgrid/duelgrid/auth"
	"github.com/duelgrid/duelgrid/game/service"
	"github.com/duelgrid/duelgrid/transport/websocket"
)

// Server is the HTTP surface: a read-only REST view over sessions, the
// WebSocket endpoint, and an optional /mcp mount. All gameplay writes
// go through the WebSocket protocol.
type Server struct {
	service  service.GameService
	hub      *websocket.Hub
	resolver auth.Resolver
	mcp      http.Handler
	router   *mux.Router
}

// NewServer creates a new API server. mcpHandler may be nil.
func NewServer(gameService service.GameService, hub *websocket.Hub, resolver auth.Resolver, mcpHandler http.Handler) *Server {
	s := &Server{
		service:  gameService,
		hub:      hub,
		resolver: resolver,
		mcp:      mcpHandler,
		router:   mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}/history", s.handleGetHistory).Methods("GET")

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	if s.mcp != nil {
		s.router.Handle("/mcp", s.mcp).Methods("POST")
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, service.ErrNotFound) {
		status = http.StatusNotFound
	}
	respondError(w, status, err.Error())
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	stateFilter := r.URL.Query().Get("state")
	snapshots := s.service.ListSnapshots(r.Context(), stateFilter)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(snapshots),
		"sessions": snapshots,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	snapshot, err := s.service.GetSnapshot(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	history, err := s.service.MoveHistory(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"count":      len(history),
		"moves":      history,
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	identity, err := s.resolver.Resolve(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err.Error())
		return
	}
	s.hub.ServeWS(w, r, identity)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
