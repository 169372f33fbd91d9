package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/duelgrid/duelgrid/game/clock"
	"github.com/duelgrid/duelgrid/game/engine"
	"github.com/duelgrid/duelgrid/game/queue"
	"github.com/duelgrid/duelgrid/game/session"
)

// Service is the production GameService backed by the session store, the
// matchmaker, and a persistence implementation.
type Service struct {
	store      *session.Store
	persist    session.Persistence
	matchmaker *queue.Matchmaker
	budget     time.Duration

	// now is swappable so tests can drive the clock.
	now func() time.Time
}

// New creates the service. budget is the per-player time budget armed at
// session activation.
func New(store *session.Store, persist session.Persistence, mm *queue.Matchmaker, budget time.Duration) *Service {
	return &Service{
		store:      store,
		persist:    persist,
		matchmaker: mm,
		budget:     budget,
		now:        time.Now,
	}
}

// SetNowFunc replaces the time source. Test hook.
func (s *Service) SetNowFunc(now func() time.Time) { s.now = now }

// JoinQueue adds the caller to the game type's queue and pairs
// immediately when an opponent is waiting. The returned PairResult is nil
// while the caller waits.
func (s *Service) JoinQueue(ctx context.Context, gt engine.GameType, userID, displayName, connID string) (*PairResult, error) {
	rules, err := engine.RulesFor(gt)
	if err != nil {
		return nil, &Error{Code: CodeIllegalMove, Message: err.Error()}
	}

	first, second, err := s.matchmaker.Join(&queue.Entry{
		ConnID:      connID,
		UserID:      userID,
		DisplayName: displayName,
		GameType:    gt,
		JoinedAt:    s.now(),
	})
	if err != nil {
		if errors.Is(err, queue.ErrAlreadyQueued) {
			return nil, ErrAlreadyQueued
		}
		return nil, err
	}
	if first == nil {
		return nil, nil // waiting
	}

	sess, err := s.pair(rules, first, second)
	if err != nil {
		// Pairing construction failed: both players go back to the front
		// of the queue in their original order, never silently dropped.
		s.matchmaker.Requeue(first, second)
		log.Printf("pairing %s/%s failed, requeued: %v", first.UserID, second.UserID, err)
		return nil, persistenceError(err)
	}

	sess.Lock()
	snap := snapshotLocked(sess)
	sess.Unlock()

	return &PairResult{
		Snapshot: snap,
		Notices: [2]MatchNotice{
			{
				ConnID:       first.ConnID,
				SessionID:    sess.ID,
				GameType:     string(gt),
				PlayerNumber: 1,
				Opponent:     second.DisplayName,
			},
			{
				ConnID:       second.ConnID,
				SessionID:    sess.ID,
				GameType:     string(gt),
				PlayerNumber: 2,
				Opponent:     first.DisplayName,
			},
		},
	}, nil
}

// pair builds and persists a new active session; first popped = player 1.
func (s *Service) pair(rules engine.Rules, first, second *queue.Entry) (*session.Session, error) {
	now := s.now()
	sess := &session.Session{
		ID:          uuid.NewString(),
		GameType:    rules.GameType(),
		Status:      session.StatusWaiting,
		Board:       rules.NewBoard(),
		Player1ID:   first.UserID,
		Player2ID:   second.UserID,
		Player1Name: first.DisplayName,
		Player2Name: second.DisplayName,
		CreatedAt:   now,
	}

	// Activation happens inside the same pairing step: clocks armed,
	// player 1 to move.
	sess.Status = session.StatusActive
	sess.Clock = clock.NewState(s.budget, engine.Player1, now)

	if err := s.persist.CreateSession(sess); err != nil {
		return nil, err
	}
	s.store.Put(sess)
	return sess, nil
}

// LeaveQueue removes the caller from the game type's queue. No-op if
// absent; no reply is owed either way.
func (s *Service) LeaveQueue(ctx context.Context, gt engine.GameType, userID string) {
	s.matchmaker.Leave(gt, userID)
}

// DropConnection removes any queue entries held by a vanished connection.
// Active sessions are untouched: a game survives a disconnect and ends
// only by time expiry or further moves.
func (s *Service) DropConnection(ctx context.Context, connID string) {
	for _, e := range s.matchmaker.DropConnection(connID) {
		log.Printf("dropped %s from %s queue on disconnect", e.UserID, e.GameType)
	}
}

// JoinSession verifies the caller is one of the two bound players and
// returns the full current snapshot. Room attachment is the transport's
// job; this call is idempotent.
func (s *Service) JoinSession(ctx context.Context, sessionID, userID string) (*Snapshot, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, ErrNotFound
	}

	sess.Lock()
	defer sess.Unlock()

	if sess.SeatOf(userID) == engine.PlayerNone {
		return nil, ErrNotAPlayer
	}
	return snapshotLocked(sess), nil
}

// MakeMove runs the full move pipeline. Steps 1-6 are pure checks; side
// effects begin only once the move is known to be applicable and are
// rolled back if the durable write fails.
func (s *Service) MakeMove(ctx context.Context, sessionID, userID string, position int) (*MoveOutcome, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, ErrNotFound
	}

	sess.Lock()
	defer sess.Unlock()

	if sess.Status != session.StatusActive {
		return nil, ErrGameOver
	}

	seat := sess.SeatOf(userID)
	if seat == engine.PlayerNone {
		return nil, ErrNotAPlayer
	}
	if seat != sess.NextPlayer() {
		return nil, ErrNotYourTurn
	}

	rules, err := engine.RulesFor(sess.GameType)
	if err != nil {
		// A session with an unknown variant is corrupt: quarantine it.
		log.Printf("quarantining session %s: %v", sess.ID, err)
		s.store.Remove(sess.ID)
		return nil, ErrNotFound
	}

	// Charge thinking time before looking at the move. If this ends the
	// game the move is not applied.
	prevClock := sess.Clock
	now := s.now()
	if sess.Clock.Tick(now) {
		expiry := s.expireLocked(sess)
		return &MoveOutcome{Snapshot: expiry.Snapshot, Expired: expiry}, nil
	}

	if !rules.IsLegal(sess.Board, position, seat) {
		// Validation failures leave no state change behind, the clock
		// charge included; the sweep dispenses elapsed time regardless.
		sess.Clock = prevClock
		return nil, ErrIllegalMove
	}

	board, err := rules.Apply(sess.Board, position, seat)
	if err != nil {
		sess.Clock = prevClock
		return nil, ErrIllegalMove
	}

	prevBoard := sess.Board
	prevStatus := sess.Status
	prevMoves := len(sess.Moves)

	move := session.Move{
		SessionID:    sess.ID,
		PlayerNumber: int(seat),
		Position:     position,
		PlayedAt:     now,
	}

	sess.Board = board
	sess.Moves = append(sess.Moves, move)

	switch {
	case rules.Winner(board) == seat:
		sess.Status = session.WinStatus(seat)
	case rules.IsDraw(board):
		sess.Status = session.StatusDraw
	default:
		sess.Clock.Pass()
	}

	if err := s.persist.SaveTurn(sess, &move); err != nil {
		// Roll back to the last durable snapshot; the caller may retry
		// the same move since nothing partial was committed.
		sess.Board = prevBoard
		sess.Status = prevStatus
		sess.Moves = sess.Moves[:prevMoves]
		sess.Clock = prevClock
		return nil, persistenceError(err)
	}

	return &MoveOutcome{Snapshot: snapshotLocked(sess)}, nil
}

// SweepExpired runs the clock check over every active session, absent any
// move activity. This is what guarantees a stalled (or disconnected)
// player eventually loses.
func (s *Service) SweepExpired(ctx context.Context) []*Expiry {
	var out []*Expiry
	for _, sess := range s.store.ListActive() {
		sess.Lock()
		if sess.Status == session.StatusActive && sess.Clock.Tick(s.now()) {
			out = append(out, s.expireLocked(sess))
		}
		sess.Unlock()
	}
	return out
}

// expireLocked finalizes a time loss for the player on turn. Caller holds
// the session lock and has already observed the expired tick.
func (s *Service) expireLocked(sess *session.Session) *Expiry {
	loser := sess.NextPlayer()
	winner := loser.Opponent()
	sess.Status = session.WinStatus(winner)

	// Expiry is not rolled back on a failed write: the in-memory outcome
	// stands and the next successful save catches the record up.
	if err := s.persist.SaveSession(sess); err != nil {
		log.Printf("failed to persist expiry for session %s: %v", sess.ID, err)
	}

	return &Expiry{
		SessionID: sess.ID,
		WinnerID:  sess.PlayerID(winner),
		LoserID:   sess.PlayerID(loser),
		Snapshot:  snapshotLocked(sess),
	}
}

// GetSnapshot returns the session's full public state.
func (s *Service) GetSnapshot(ctx context.Context, sessionID string) (*Snapshot, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, ErrNotFound
	}
	sess.Lock()
	defer sess.Unlock()
	return snapshotLocked(sess), nil
}

// ListSnapshots returns every session, optionally filtered by state.
func (s *Service) ListSnapshots(ctx context.Context, stateFilter string) []*Snapshot {
	var out []*Snapshot
	for _, sess := range s.store.List() {
		sess.Lock()
		if stateFilter == "" || string(sess.Status) == stateFilter {
			out = append(out, snapshotLocked(sess))
		}
		sess.Unlock()
	}
	return out
}

// MoveHistory returns the session's append-only move trail.
func (s *Service) MoveHistory(ctx context.Context, sessionID string) ([]HistoryEntry, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, ErrNotFound
	}
	sess.Lock()
	defer sess.Unlock()
	return historyFromMoves(sess.Moves), nil
}

// snapshotLocked builds the wire snapshot. Caller holds the session lock.
func snapshotLocked(sess *session.Session) *Snapshot {
	snap := &Snapshot{
		SessionID:            sess.ID,
		GameType:             string(sess.GameType),
		State:                string(sess.Status),
		Board:                sess.Board.Grid(),
		NextPlayer:           int(sess.NextPlayer()),
		Player1ID:            sess.Player1ID,
		Player2ID:            sess.Player2ID,
		Player1Name:          sess.Player1Name,
		Player2Name:          sess.Player2Name,
		Player1TimeRemaining: sess.Clock.Player1.Seconds(),
		Player2TimeRemaining: sess.Clock.Player2.Seconds(),
	}
	if w := sess.Winner(); w != engine.PlayerNone {
		id := sess.PlayerID(w)
		snap.Winner = &id
	}
	return snap
}
