package session

// Persistence is the durability interface behind the store. The in-memory
// session stays authoritative; implementations only have to bring the
// last written snapshot back at startup.
type Persistence interface {
	// CreateSession writes a freshly paired session.
	CreateSession(s *Session) error

	// SaveTurn writes the updated session together with the move that
	// produced it. Both land atomically or not at all, so a failed write
	// leaves the durable snapshot consistent and the caller free to retry.
	SaveTurn(s *Session, m *Move) error

	// SaveSession writes a session update that carries no move, such as a
	// time expiry.
	SaveSession(s *Session) error

	// LoadSessions returns every persisted session, move history included.
	LoadSessions() ([]*Session, error)
}
