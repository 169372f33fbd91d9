// Package sweep runs the periodic flag-fall check. Clocks only settle
// when something looks at them, so without the sweeper an abandoned
// session would stay ACTIVE forever.
package sweep

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/duelgrid/duelgrid/game/service"
)

// Broadcaster receives expiry announcements for connected spectators
// and players. The websocket hub implements it.
type Broadcaster interface {
	BroadcastExpiry(exp *service.Expiry)
}

// Sweeper periodically asks the game service for expired sessions and
// announces each one.
type Sweeper struct {
	svc      service.GameService
	bc       Broadcaster
	interval time.Duration
	sched    gocron.Scheduler
}

func New(svc service.GameService, bc Broadcaster, interval time.Duration) *Sweeper {
	return &Sweeper{svc: svc, bc: bc, interval: interval}
}

// Start begins sweeping. Call Stop to shut the scheduler down.
func (s *Sweeper) Start() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	s.sched = sched

	_, err = sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.runOnce),
	)
	if err != nil {
		return err
	}

	sched.Start()
	return nil
}

// Stop shuts the scheduler down and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.sched != nil {
		if err := s.sched.Shutdown(); err != nil {
			log.Printf("sweeper shutdown: %v", err)
		}
	}
}

// runOnce is one sweep pass. Also usable directly from tests.
func (s *Sweeper) runOnce() {
	expiries := s.svc.SweepExpired(context.Background())
	for _, exp := range expiries {
		log.Printf("session %s: time expired, %s wins on time", exp.SessionID, exp.WinnerID)
		if s.bc != nil {
			s.bc.BroadcastExpiry(exp)
		}
	}
}
