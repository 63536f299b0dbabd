package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dohr-michael/lingo/internal/results"
)

// Sweeper purges result records older than the retention window on a
// cron schedule.
type Sweeper struct {
	store     results.Store
	retention time.Duration
	cron      *cron.Cron
}

// NewSweeper schedules a purge of records older than retention using a
// standard 5-field cron expression.
func NewSweeper(store results.Store, retention time.Duration, schedule string) (*Sweeper, error) {
	s := &Sweeper{
		store:     store,
		retention: retention,
		cron:      cron.New(),
	}
	if _, err := s.cron.AddFunc(schedule, s.sweep); err != nil {
		return nil, fmt.Errorf("parse sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start begins running the schedule in its own goroutine.
func (s *Sweeper) Start() {
	s.cron.Start()
	slog.Info("result sweeper started", "retention", s.retention)
}

// Stop halts the schedule, waiting for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Sweeper) sweep() {
	cutoff := time.Now().Add(-s.retention)
	removed, err := s.store.Purge(context.Background(), cutoff)
	if err != nil {
		slog.Error("result sweep failed", "error", err)
		return
	}
	if removed > 0 {
		slog.Info("swept expired results", "removed", removed)
	}
}
