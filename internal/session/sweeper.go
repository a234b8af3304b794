// Package session runs the background maintenance for the session table.
//
// Token validity NEVER depends on this package: expiry is checked at read
// time, and an expired row behaves exactly like a missing one. The sweeper
// only reclaims the space those dead rows occupy, so the table doesn't grow
// without bound on a long-lived deployment.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sakif/vcard-backend/internal/repository"
)

// Sweeper periodically deletes expired session rows on a cron schedule.
type Sweeper struct {
	sessions repository.SessionRepository
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewSweeper creates a sweeper running on the given cron spec (standard
// 5-field format or a descriptor like "@hourly"). An invalid spec is a
// startup error, not something to discover at 3am.
func NewSweeper(sessions repository.SessionRepository, schedule string, logger *slog.Logger) (*Sweeper, error) {
	s := &Sweeper{
		sessions: sessions,
		cron:     cron.New(),
		logger:   logger,
	}

	if _, err := s.cron.AddFunc(schedule, s.sweep); err != nil {
		return nil, fmt.Errorf("session: invalid sweep schedule %q: %w", schedule, err)
	}

	return s, nil
}

// Start begins running the schedule in its own goroutine.
func (s *Sweeper) Start() {
	s.cron.Start()
	s.logger.Info("session sweeper started")
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("session sweeper stopped")
}

// sweep deletes every session past its expiry. Errors are logged, not fatal —
// the next tick simply tries again.
func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	purged, err := s.sessions.DeleteExpired(ctx, time.Now())
	if err != nil {
		s.logger.Error("session sweep failed", slog.String("error", err.Error()))
		return
	}

	if purged > 0 {
		s.logger.Info("expired sessions purged", slog.Int64("count", purged))
	}
}
