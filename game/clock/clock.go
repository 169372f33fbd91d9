// Package clock implements the per-player countdown attached to every
// active session. Elapsed wall-clock time between events is charged to
// exactly one player, whoever's turn it is.
package clock

import (
	"time"

	"github.com/duelgrid/duelgrid/game/engine"
)

// State is the countdown for one session. It is embedded in the session
// and mutated only under the session's lock.
type State struct {
	Player1 time.Duration
	Player2 time.Duration

	// Turn is the player currently being charged.
	Turn engine.Player

	// MarkAt is the instant the current charge window opened, reset on
	// every tick and move.
	MarkAt time.Time
}

// NewState arms both countdowns with the session's time budget.
func NewState(budget time.Duration, turn engine.Player, now time.Time) State {
	return State{
		Player1: budget,
		Player2: budget,
		Turn:    turn,
		MarkAt:  now,
	}
}

// Remaining returns the countdown for a player.
func (s *State) Remaining(p engine.Player) time.Duration {
	if p == engine.Player1 {
		return s.Player1
	}
	return s.Player2
}

// Tick charges the time elapsed since MarkAt to the player on turn,
// clamped at zero, and resets MarkAt. It reports whether the charged
// player's countdown reached zero. Time never increments.
func (s *State) Tick(now time.Time) (expired bool) {
	elapsed := now.Sub(s.MarkAt)
	if elapsed < 0 {
		elapsed = 0
	}
	s.MarkAt = now

	switch s.Turn {
	case engine.Player1:
		s.Player1 -= elapsed
		if s.Player1 <= 0 {
			s.Player1 = 0
			return true
		}
	case engine.Player2:
		s.Player2 -= elapsed
		if s.Player2 <= 0 {
			s.Player2 = 0
			return true
		}
	}
	return false
}

// Pass hands the charge window to the other player. Called after an
// accepted move; Tick must have run first so the mover pays for their
// thinking time.
func (s *State) Pass() {
	s.Turn = s.Turn.Opponent()
}
