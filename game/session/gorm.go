package session

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/duelgrid/duelgrid/game/clock"
	"github.com/duelgrid/duelgrid/game/engine"
)

// sessionRecord is the persisted shape of a Session.
type sessionRecord struct {
	ID            string `gorm:"primaryKey"`
	GameType      string
	Status        string
	Board         string // JSON grid
	NextPlayer    int
	Player1ID     string
	Player2ID     string
	Player1Name   string
	Player2Name   string
	Player1TimeMs int64
	Player2TimeMs int64
	LastMoveAt    time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (sessionRecord) TableName() string { return "sessions" }

// moveRecord is one row of the append-only move audit trail.
type moveRecord struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	SessionID    string `gorm:"index"`
	PlayerNumber int
	Position     int
	PlayedAt     time.Time
}

func (moveRecord) TableName() string { return "moves" }

// GormPersistence stores sessions and moves in Postgres through GORM.
type GormPersistence struct {
	db *gorm.DB
}

// OpenGorm connects to Postgres and migrates the schema.
func OpenGorm(dsn string) (*GormPersistence, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return NewGormPersistence(db)
}

// NewGormPersistence wraps an existing GORM handle and migrates the schema.
func NewGormPersistence(db *gorm.DB) (*GormPersistence, error) {
	if err := db.AutoMigrate(&sessionRecord{}, &moveRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &GormPersistence{db: db}, nil
}

func (p *GormPersistence) CreateSession(s *Session) error {
	rec, err := toRecord(s)
	if err != nil {
		return err
	}
	if err := p.db.Create(rec).Error; err != nil {
		return fmt.Errorf("failed to persist session %s: %w", s.ID, err)
	}
	return nil
}

func (p *GormPersistence) SaveTurn(s *Session, m *Move) error {
	rec, err := toRecord(s)
	if err != nil {
		return err
	}
	err = p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(rec).Error; err != nil {
			return err
		}
		return tx.Create(&moveRecord{
			SessionID:    m.SessionID,
			PlayerNumber: m.PlayerNumber,
			Position:     m.Position,
			PlayedAt:     m.PlayedAt,
		}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to persist turn for session %s: %w", s.ID, err)
	}
	return nil
}

func (p *GormPersistence) SaveSession(s *Session) error {
	rec, err := toRecord(s)
	if err != nil {
		return err
	}
	if err := p.db.Save(rec).Error; err != nil {
		return fmt.Errorf("failed to persist session %s: %w", s.ID, err)
	}
	return nil
}

func (p *GormPersistence) LoadSessions() ([]*Session, error) {
	var recs []sessionRecord
	if err := p.db.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}

	out := make([]*Session, 0, len(recs))
	for _, rec := range recs {
		s, err := fromRecord(rec)
		if err != nil {
			// A corrupted row is quarantined, not fatal.
			continue
		}
		var moveRecs []moveRecord
		if err := p.db.Where("session_id = ?", rec.ID).Order("id asc").Find(&moveRecs).Error; err != nil {
			return nil, fmt.Errorf("failed to load moves for session %s: %w", rec.ID, err)
		}
		for _, mr := range moveRecs {
			s.Moves = append(s.Moves, Move{
				SessionID:    mr.SessionID,
				PlayerNumber: mr.PlayerNumber,
				Position:     mr.Position,
				PlayedAt:     mr.PlayedAt,
			})
		}
		out = append(out, s)
	}
	return out, nil
}

func toRecord(s *Session) (*sessionRecord, error) {
	boardJSON, err := json.Marshal(s.Board)
	if err != nil {
		return nil, fmt.Errorf("failed to encode board for session %s: %w", s.ID, err)
	}
	return &sessionRecord{
		ID:            s.ID,
		GameType:      string(s.GameType),
		Status:        string(s.Status),
		Board:         string(boardJSON),
		NextPlayer:    int(s.NextPlayer()),
		Player1ID:     s.Player1ID,
		Player2ID:     s.Player2ID,
		Player1Name:   s.Player1Name,
		Player2Name:   s.Player2Name,
		Player1TimeMs: s.Clock.Player1.Milliseconds(),
		Player2TimeMs: s.Clock.Player2.Milliseconds(),
		LastMoveAt:    s.Clock.MarkAt,
		CreatedAt:     s.CreatedAt,
	}, nil
}

func fromRecord(rec sessionRecord) (*Session, error) {
	gt, err := engine.ParseGameType(rec.GameType)
	if err != nil {
		return nil, err
	}
	var board engine.Board
	if err := json.Unmarshal([]byte(rec.Board), &board); err != nil {
		return nil, fmt.Errorf("corrupt board for session %s: %w", rec.ID, err)
	}
	return &Session{
		ID:          rec.ID,
		GameType:    gt,
		Status:      Status(rec.Status),
		Board:       board,
		Player1ID:   rec.Player1ID,
		Player2ID:   rec.Player2ID,
		Player1Name: rec.Player1Name,
		Player2Name: rec.Player2Name,
		Clock: clock.State{
			Player1: time.Duration(rec.Player1TimeMs) * time.Millisecond,
			Player2: time.Duration(rec.Player2TimeMs) * time.Millisecond,
			Turn:    engine.Player(rec.NextPlayer),
			MarkAt:  rec.LastMoveAt,
		},
		CreatedAt: rec.CreatedAt,
	}, nil
}
