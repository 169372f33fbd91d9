package service

import (
	"context"

	"github.com/duelgrid/duelgrid/game/engine"
)

// GameService is the full contract of the session engine. All mutating
// operations hold the target session's lock for their whole duration, so
// per-session mutation is totally ordered.
type GameService interface {
	// Matchmaking
	JoinQueue(ctx context.Context, gt engine.GameType, userID, displayName, connID string) (*PairResult, error)
	LeaveQueue(ctx context.Context, gt engine.GameType, userID string)
	DropConnection(ctx context.Context, connID string)

	// Gameplay
	JoinSession(ctx context.Context, sessionID, userID string) (*Snapshot, error)
	MakeMove(ctx context.Context, sessionID, userID string, position int) (*MoveOutcome, error)

	// Clock sweep over all active sessions
	SweepExpired(ctx context.Context) []*Expiry

	// Read surface
	GetSnapshot(ctx context.Context, sessionID string) (*Snapshot, error)
	ListSnapshots(ctx context.Context, stateFilter string) []*Snapshot
	MoveHistory(ctx context.Context, sessionID string) ([]HistoryEntry, error)
}
