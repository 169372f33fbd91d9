package service

import (
	"time"

	"github.com/duelgrid/duelgrid/game/session"
)

// Snapshot is the full canonical public state of a session, always sent
// whole. Clients never receive deltas; a missed broadcast is superseded
// by the next one.
type Snapshot struct {
	SessionID            string  `json:"session_id"`
	GameType             string  `json:"game_type"`
	State                string  `json:"state"`
	Board                [][]int `json:"board_state"`
	NextPlayer           int     `json:"next_player"`
	Player1ID            string  `json:"player1_id"`
	Player2ID            string  `json:"player2_id"`
	Player1Name          string  `json:"player1_name"`
	Player2Name          string  `json:"player2_name"`
	Player1TimeRemaining float64 `json:"player1_time_remaining"`
	Player2TimeRemaining float64 `json:"player2_time_remaining"`
	Winner               *string `json:"winner"`
}

// MatchNotice is the pairing notification delivered individually to one
// of the two paired connections; room membership does not exist yet at
// pairing time.
type MatchNotice struct {
	ConnID       string `json:"-"`
	SessionID    string `json:"session_id"`
	GameType     string `json:"game_type"`
	PlayerNumber int    `json:"player_number"`
	Opponent     string `json:"opponent"`
}

// PairResult reports a successful pairing: the new session's snapshot and
// one notice per paired connection.
type PairResult struct {
	Snapshot *Snapshot
	Notices  [2]MatchNotice
}

// Expiry reports a clock reaching zero. It is broadcast as a distinct
// time-expired event before the accompanying state update.
type Expiry struct {
	SessionID string `json:"session_id"`
	WinnerID  string `json:"winner"`
	LoserID   string `json:"loser"`

	Snapshot *Snapshot `json:"-"`
}

// MoveOutcome is the result of an accepted makeMove call, or of one cut
// short by time expiry (Expired non-nil, move not applied).
type MoveOutcome struct {
	Snapshot *Snapshot
	Expired  *Expiry
}

// HistoryEntry is one move in a session's audit trail.
type HistoryEntry struct {
	PlayerNumber int       `json:"player_number"`
	Position     int       `json:"position"`
	PlayedAt     time.Time `json:"played_at"`
}

func historyFromMoves(moves []session.Move) []HistoryEntry {
	out := make([]HistoryEntry, len(moves))
	for i, m := range moves {
		out[i] = HistoryEntry{
			PlayerNumber: m.PlayerNumber,
			Position:     m.Position,
			PlayedAt:     m.PlayedAt,
		}
	}
	return out
}
