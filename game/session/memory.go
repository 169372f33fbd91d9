package session

import (
	"encoding/json"
	"sync"
	"time"
)

func unixMilli(ms int64) time.Time { return time.UnixMilli(ms) }

// MemoryPersistence keeps durable snapshots in process memory. It backs
// tests and the -dev run mode, where losing state on restart is fine.
// Snapshots are deep copies taken through the same JSON codec the real
// store uses, so a later in-memory mutation cannot leak into them.
type MemoryPersistence struct {
	sessions map[string][]byte
	moves    map[string][]Move
	mu       sync.Mutex

	// FailWith, when set, makes every write fail with this error.
	// Tests use it to exercise persistence-failure rollback.
	FailWith error
}

// NewMemoryPersistence returns an empty in-memory persistence.
func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{
		sessions: make(map[string][]byte),
		moves:    make(map[string][]Move),
	}
}

func (p *MemoryPersistence) CreateSession(s *Session) error {
	return p.SaveSession(s)
}

func (p *MemoryPersistence) SaveTurn(s *Session, m *Move) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailWith != nil {
		return p.FailWith
	}
	snap, err := encodeSnapshot(s)
	if err != nil {
		return err
	}
	p.sessions[s.ID] = snap
	p.moves[s.ID] = append(p.moves[s.ID], *m)
	return nil
}

func (p *MemoryPersistence) SaveSession(s *Session) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailWith != nil {
		return p.FailWith
	}
	snap, err := encodeSnapshot(s)
	if err != nil {
		return err
	}
	p.sessions[s.ID] = snap
	return nil
}

func (p *MemoryPersistence) LoadSessions() ([]*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Session, 0, len(p.sessions))
	for id, snap := range p.sessions {
		s, err := decodeSnapshot(snap)
		if err != nil {
			continue
		}
		s.Moves = append(s.Moves, p.moves[id]...)
		out = append(out, s)
	}
	return out, nil
}

// MoveCount reports how many moves have been persisted for a session.
func (p *MemoryPersistence) MoveCount(sessionID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.moves[sessionID])
}

// snapshot is the JSON shape used for in-memory durable copies. It
// mirrors the relational record without the GORM machinery.
type snapshot struct {
	ID          string          `json:"id"`
	GameType    string          `json:"game_type"`
	Status      string          `json:"status"`
	Board       json.RawMessage `json:"board"`
	NextPlayer  int             `json:"next_player"`
	Player1ID   string          `json:"player1_id"`
	Player2ID   string          `json:"player2_id"`
	Player1Name string          `json:"player1_name"`
	Player2Name string          `json:"player2_name"`
	Player1Ms   int64           `json:"player1_ms"`
	Player2Ms   int64           `json:"player2_ms"`
	LastMoveAt  int64           `json:"last_move_at_unix_ms"`
	CreatedAt   int64           `json:"created_at_unix_ms"`
}

func encodeSnapshot(s *Session) ([]byte, error) {
	rec, err := toRecord(s)
	if err != nil {
		return nil, err
	}
	return json.Marshal(snapshot{
		ID:          rec.ID,
		GameType:    rec.GameType,
		Status:      rec.Status,
		Board:       json.RawMessage(rec.Board),
		NextPlayer:  rec.NextPlayer,
		Player1ID:   rec.Player1ID,
		Player2ID:   rec.Player2ID,
		Player1Name: rec.Player1Name,
		Player2Name: rec.Player2Name,
		Player1Ms:   rec.Player1TimeMs,
		Player2Ms:   rec.Player2TimeMs,
		LastMoveAt:  rec.LastMoveAt.UnixMilli(),
		CreatedAt:   rec.CreatedAt.UnixMilli(),
	})
}

func decodeSnapshot(data []byte) (*Session, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return fromRecord(sessionRecord{
		ID:            snap.ID,
		GameType:      snap.GameType,
		Status:        snap.Status,
		Board:         string(snap.Board),
		NextPlayer:    snap.NextPlayer,
		Player1ID:     snap.Player1ID,
		Player2ID:     snap.Player2ID,
		Player1Name:   snap.Player1Name,
		Player2Name:   snap.Player2Name,
		Player1TimeMs: snap.Player1Ms,
		Player2TimeMs: snap.Player2Ms,
		LastMoveAt:    unixMilli(snap.LastMoveAt),
		CreatedAt:     unixMilli(snap.CreatedAt),
	})
}
