package session

import (
	"errors"
	"testing"
	"time"

	"github.com/duelgrid/duelgrid/game/engine"
)

func TestMemoryPersistenceRoundTrip(t *testing.T) {
	p := NewMemoryPersistence()
	s := newTestSession(t, "s1", StatusActive)

	if err := p.CreateSession(s); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	move := &Move{SessionID: "s1", PlayerNumber: 1, Position: 4, PlayedAt: time.Now()}
	rules, _ := engine.RulesFor(s.GameType)
	board, err := rules.Apply(s.Board, 4, engine.Player1)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	s.Board = board
	s.Clock.Pass()
	if err := p.SaveTurn(s, move); err != nil {
		t.Fatalf("SaveTurn failed: %v", err)
	}

	loaded, err := p.LoadSessions()
	if err != nil {
		t.Fatalf("LoadSessions failed: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("LoadSessions returned %d sessions, want 1", len(loaded))
	}

	got := loaded[0]
	if got.ID != "s1" || got.GameType != engine.TicTacToe {
		t.Errorf("loaded session identity mismatch: %+v", got)
	}
	if got.Board.At(1, 1) != engine.Player1 {
		t.Error("loaded board lost the applied move")
	}
	if got.NextPlayer() != engine.Player2 {
		t.Errorf("loaded NextPlayer = %v, want Player2", got.NextPlayer())
	}
	if len(got.Moves) != 1 || got.Moves[0].Position != 4 {
		t.Errorf("loaded moves = %+v, want the single persisted move", got.Moves)
	}
}

func TestMemoryPersistenceSnapshotIsolation(t *testing.T) {
	p := NewMemoryPersistence()
	s := newTestSession(t, "s1", StatusActive)
	if err := p.SaveSession(s); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	// Mutating the live session must not change the durable snapshot.
	s.Board.Cells[0] = engine.Player2
	s.Status = StatusDraw

	loaded, err := p.LoadSessions()
	if err != nil {
		t.Fatalf("LoadSessions failed: %v", err)
	}
	if loaded[0].Board.Cells[0] != engine.PlayerNone {
		t.Error("durable snapshot changed after in-memory mutation")
	}
	if loaded[0].Status != StatusActive {
		t.Errorf("durable status = %s, want ACTIVE", loaded[0].Status)
	}
}

func TestMemoryPersistenceFailureInjection(t *testing.T) {
	p := NewMemoryPersistence()
	s := newTestSession(t, "s1", StatusActive)
	if err := p.CreateSession(s); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	boom := errors.New("disk on fire")
	p.FailWith = boom

	move := &Move{SessionID: "s1", PlayerNumber: 1, Position: 0, PlayedAt: time.Now()}
	if err := p.SaveTurn(s, move); !errors.Is(err, boom) {
		t.Fatalf("SaveTurn = %v, want injected failure", err)
	}
	if p.MoveCount("s1") != 0 {
		t.Error("failed SaveTurn must not record the move")
	}
}
