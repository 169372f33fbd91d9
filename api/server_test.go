package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/duelgrid/duelgrid/auth"
	"github.com/duelgrid/duelgrid/game/engine"
	"github.com/duelgrid/duelgrid/game/queue"
	"github.com/duelgrid/duelgrid/game/service"
	"github.com/duelgrid/duelgrid/game/session"
	"github.com/duelgrid/duelgrid/transport/websocket"
)

func newTestServer(t *testing.T) (*Server, *service.Service) {
	t.Helper()
	svc := service.New(session.NewStore(), session.NewMemoryPersistence(), queue.NewMatchmaker(), time.Minute)
	hub := websocket.NewHub(svc)
	return NewServer(svc, hub, auth.QueryResolver{}, nil), svc
}

// pairSession puts two users through the queue and returns the session id.
func pairSession(t *testing.T, svc *service.Service) string {
	t.Helper()
	ctx := context.Background()
	if _, err := svc.JoinQueue(ctx, engine.TicTacToe, "alice", "Alice", "c1"); err != nil {
		t.Fatalf("JoinQueue alice: %v", err)
	}
	result, err := svc.JoinQueue(ctx, engine.TicTacToe, "bob", "Bob", "c2")
	if err != nil {
		t.Fatalf("JoinQueue bob: %v", err)
	}
	if result == nil {
		t.Fatal("expected a pairing")
	}
	return result.Snapshot.SessionID
}

func getJSON(t *testing.T, srv *Server, path string, wantStatus int, out interface{}) {
	t.Helper()
	r := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)
	if w.Code != wantStatus {
		t.Fatalf("GET %s: status = %d, want %d (body %s)", path, w.Code, wantStatus, w.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("GET %s: invalid JSON: %v", path, err)
		}
	}
}

func TestListSessions(t *testing.T) {
	srv, svc := newTestServer(t)
	sessionID := pairSession(t, svc)

	var resp struct {
		Count    int                `json:"count"`
		Sessions []service.Snapshot `json:"sessions"`
	}
	getJSON(t, srv, "/api/sessions", http.StatusOK, &resp)

	if resp.Count != 1 || len(resp.Sessions) != 1 {
		t.Fatalf("count = %d, sessions = %d, want 1", resp.Count, len(resp.Sessions))
	}
	if resp.Sessions[0].SessionID != sessionID {
		t.Errorf("session id = %s, want %s", resp.Sessions[0].SessionID, sessionID)
	}
}

func TestListSessionsStateFilter(t *testing.T) {
	srv, svc := newTestServer(t)
	pairSession(t, svc)

	var resp struct {
		Count int `json:"count"`
	}
	getJSON(t, srv, "/api/sessions?state=ACTIVE", http.StatusOK, &resp)
	if resp.Count != 1 {
		t.Errorf("ACTIVE count = %d, want 1", resp.Count)
	}

	getJSON(t, srv, "/api/sessions?state=DRAW", http.StatusOK, &resp)
	if resp.Count != 0 {
		t.Errorf("DRAW count = %d, want 0", resp.Count)
	}
}

func TestGetSession(t *testing.T) {
	srv, svc := newTestServer(t)
	sessionID := pairSession(t, svc)

	var snap service.Snapshot
	getJSON(t, srv, "/api/sessions/"+sessionID, http.StatusOK, &snap)

	if snap.GameType != "tictactoe" {
		t.Errorf("game type = %s", snap.GameType)
	}
	if snap.State != "ACTIVE" {
		t.Errorf("state = %s, want ACTIVE", snap.State)
	}
	if snap.NextPlayer != 1 {
		t.Errorf("next player = %d, want 1", snap.NextPlayer)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	var resp map[string]string
	getJSON(t, srv, "/api/sessions/nope", http.StatusNotFound, &resp)
	if resp["error"] == "" {
		t.Error("expected an error message")
	}
}

func TestGetHistory(t *testing.T) {
	srv, svc := newTestServer(t)
	sessionID := pairSession(t, svc)

	ctx := context.Background()
	if _, err := svc.MakeMove(ctx, sessionID, "alice", 4); err != nil {
		t.Fatalf("MakeMove: %v", err)
	}
	if _, err := svc.MakeMove(ctx, sessionID, "bob", 0); err != nil {
		t.Fatalf("MakeMove: %v", err)
	}

	var resp struct {
		Count int                    `json:"count"`
		Moves []service.HistoryEntry `json:"moves"`
	}
	getJSON(t, srv, "/api/sessions/"+sessionID+"/history", http.StatusOK, &resp)

	if resp.Count != 2 {
		t.Fatalf("count = %d, want 2", resp.Count)
	}
	if resp.Moves[0].PlayerNumber != 1 || resp.Moves[0].Position != 4 {
		t.Errorf("first move = %+v", resp.Moves[0])
	}
	if resp.Moves[1].PlayerNumber != 2 || resp.Moves[1].Position != 0 {
		t.Errorf("second move = %+v", resp.Moves[1])
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	getJSON(t, srv, "/healthz", http.StatusOK, nil)
}

func TestWebSocketRequiresIdentity(t *testing.T) {
	srv, _ := newTestServer(t)

	r := httptest.NewRequest("GET", "/ws", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
