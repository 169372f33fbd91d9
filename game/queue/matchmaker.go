// Package queue implements the matchmaking queues: one FIFO per game
// type, pairing the two oldest waiting players in strict arrival order.
package queue

import (
	"errors"
	"sync"
	"time"

	"github.com/duelgrid/duelgrid/game/engine"
)

var ErrAlreadyQueued = errors.New("user already queued")

// Entry is one waiting player. Entries live only inside the matchmaker:
// created on join, destroyed on match, leave, or disconnect.
type Entry struct {
	ConnID      string
	UserID      string
	DisplayName string
	GameType    engine.GameType
	JoinedAt    time.Time
}

// fifo is the waiting line for one game type, guarded by its own lock so
// queues for different game types never contend.
type fifo struct {
	mu      sync.Mutex
	entries []*Entry
}

// Matchmaker holds the per-game-type queues. State is purely in-memory
// and lost on restart; players re-queue.
type Matchmaker struct {
	mu     sync.Mutex
	queues map[engine.GameType]*fifo
}

// NewMatchmaker returns an empty matchmaker.
func NewMatchmaker() *Matchmaker {
	return &Matchmaker{queues: make(map[engine.GameType]*fifo)}
}

func (m *Matchmaker) queueFor(gt engine.GameType) *fifo {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.queues[gt]
	if !ok {
		q = &fifo{}
		m.queues[gt] = q
	}
	return q
}

// Join appends an entry and immediately attempts a match. When the queue
// holds two or more players it pops the two oldest and returns them, first
// popped first; the caller binds them into a session with first = player 1.
//
// A user already waiting in the same queue is not appended twice: joining
// again from the same connection fails with ErrAlreadyQueued, while
// joining from a new connection updates the stored connection reference
// (the reconnect case) and keeps the original queue position.
func (m *Matchmaker) Join(e *Entry) (first, second *Entry, err error) {
	q := m.queueFor(e.GameType)
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, waiting := range q.entries {
		if waiting.UserID == e.UserID {
			if waiting.ConnID == e.ConnID {
				return nil, nil, ErrAlreadyQueued
			}
			waiting.ConnID = e.ConnID
			waiting.DisplayName = e.DisplayName
			return nil, nil, nil
		}
	}

	q.entries = append(q.entries, e)
	if len(q.entries) < 2 {
		return nil, nil, nil
	}

	first, second = q.entries[0], q.entries[1]
	q.entries = q.entries[2:]
	return first, second, nil
}

// Requeue pushes two entries back to the front of their queue in their
// original relative order. Used when pairing construction fails so the
// players are not silently dropped.
func (m *Matchmaker) Requeue(first, second *Entry) {
	q := m.queueFor(first.GameType)
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = append([]*Entry{first, second}, q.entries...)
}

// Leave removes the user's entry from the given queue. No-op if absent.
func (m *Matchmaker) Leave(gt engine.GameType, userID string) bool {
	q := m.queueFor(gt)
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, waiting := range q.entries {
		if waiting.UserID == userID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

// DropConnection removes every entry that references the connection,
// across all queues. Called by the broadcaster on disconnect.
func (m *Matchmaker) DropConnection(connID string) []*Entry {
	m.mu.Lock()
	queues := make([]*fifo, 0, len(m.queues))
	for _, q := range m.queues {
		queues = append(queues, q)
	}
	m.mu.Unlock()

	var dropped []*Entry
	for _, q := range queues {
		q.mu.Lock()
		kept := q.entries[:0]
		for _, waiting := range q.entries {
			if waiting.ConnID == connID {
				dropped = append(dropped, waiting)
				continue
			}
			kept = append(kept, waiting)
		}
		q.entries = kept
		q.mu.Unlock()
	}
	return dropped
}

// Len reports how many players wait in the given queue.
func (m *Matchmaker) Len(gt engine.GameType) int {
	q := m.queueFor(gt)
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}
