// Package session owns the canonical in-memory representation of every
// game session and its durability. The Store is the single source of
// truth; persistence is a write-through side effect and is read back only
// at process start.
package session

import (
	"sync"
	"time"

	"github.com/duelgrid/duelgrid/game/clock"
	"github.com/duelgrid/duelgrid/game/engine"
)

// Status is the session lifecycle state. Terminal states accept no
// further moves but remain readable.
type Status string

const (
	StatusWaiting    Status = "WAITING"
	StatusActive     Status = "ACTIVE"
	StatusPlayer1Win Status = "PLAYER1_WIN"
	StatusPlayer2Win Status = "PLAYER2_WIN"
	StatusDraw       Status = "DRAW"
)

// Terminal reports whether the state accepts no further transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusPlayer1Win, StatusPlayer2Win, StatusDraw:
		return true
	}
	return false
}

// WinStatus maps a winning player to the matching terminal status.
func WinStatus(p engine.Player) Status {
	if p == engine.Player1 {
		return StatusPlayer1Win
	}
	return StatusPlayer2Win
}

// Move is one accepted move, append-only. Replaying a session's moves
// from an empty board through the rules engine reproduces its board.
type Move struct {
	SessionID    string    `json:"session_id"`
	PlayerNumber int       `json:"player_number"`
	Position     int       `json:"position"`
	PlayedAt     time.Time `json:"played_at"`
}

// Session is one bound two-player game from pairing to terminal outcome.
// All mutation happens under the session's lock; the turn marker lives on
// the clock so there is a single copy of "who moves next".
type Session struct {
	ID          string
	GameType    engine.GameType
	Status      Status
	Board       engine.Board
	Player1ID   string
	Player2ID   string
	Player1Name string
	Player2Name string
	Clock       clock.State
	Moves       []Move
	CreatedAt   time.Time

	mu sync.Mutex
}

// Lock acquires the session's exclusive mutation lock.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session's mutation lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// NextPlayer returns the player whose turn it is.
func (s *Session) NextPlayer() engine.Player { return s.Clock.Turn }

// LastMoveAt returns the instant the current charge window opened.
func (s *Session) LastMoveAt() time.Time { return s.Clock.MarkAt }

// SeatOf resolves a user id to player 1 or 2, or PlayerNone if the user
// is not bound to this session.
func (s *Session) SeatOf(userID string) engine.Player {
	switch userID {
	case s.Player1ID:
		return engine.Player1
	case s.Player2ID:
		return engine.Player2
	}
	return engine.PlayerNone
}

// PlayerID returns the user id bound to a seat.
func (s *Session) PlayerID(p engine.Player) string {
	if p == engine.Player1 {
		return s.Player1ID
	}
	return s.Player2ID
}

// Winner returns the winning seat for terminal win states, PlayerNone
// otherwise.
func (s *Session) Winner() engine.Player {
	switch s.Status {
	case StatusPlayer1Win:
		return engine.Player1
	case StatusPlayer2Win:
		return engine.Player2
	}
	return engine.PlayerNone
}
