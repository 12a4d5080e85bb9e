package tracker

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Scheduler triggers extraction cycles at a fixed interval. A tick that
// arrives while a cycle is still running is skipped; intervals measure
// start-to-start and late cycles are never made up.
type Scheduler struct {
	tracker  *Tracker
	interval time.Duration
	logger   *slog.Logger
	stop     chan struct{}
	done     chan struct{}
}

// NewScheduler creates a scheduler over the tracker.
func NewScheduler(tracker *Tracker, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		tracker:  tracker,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the schedule loop. The first cycle runs immediately.
func (s *Scheduler) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	s.runCycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runCycle(ctx)
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	report, err := s.tracker.RunCycle(ctx)
	if errors.Is(err, ErrCycleInProgress) {
		s.logger.Warn("previous cycle still running, skipping tick")
		return
	}
	if err != nil {
		s.logger.Error("cycle failed", "error", err)
		return
	}
	s.logger.Info("scheduled cycle complete", "cycle", report.CycleID, "outcome", report.Outcome)
}

// Stop terminates the schedule loop and waits for it to exit. A cycle in
// flight finishes on its own.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}
