package metric

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mhagen/texwatch/internal/repository"
)

// Service handles metric series operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new metric service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Append validates and persists a record. Records are immutable once written.
func (s *Service) Append(ctx context.Context, rec *Record) error {
	if rec == nil || rec.ProjectID == "" || rec.RecordedAt.IsZero() {
		return ErrInvalidRecord
	}
	if (rec.Words != nil && *rec.Words < 0) || (rec.Pages != nil && *rec.Pages < 0) {
		return ErrInvalidRecord
	}

	if err := s.repo.Append(ctx, rec); err != nil {
		return fmt.Errorf("appending record: %w", err)
	}
	return nil
}

// History returns a project's ordered metric records.
func (s *Service) History(ctx context.Context, projectID string, opts HistoryOptions) ([]Record, error) {
	return s.repo.History(ctx, projectID, opts)
}

// Latest returns a project's most recent record.
func (s *Service) Latest(ctx context.Context, projectID string) (*Record, error) {
	rec, err := s.repo.Latest(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoRecords
		}
		return nil, fmt.Errorf("getting latest record: %w", err)
	}
	return rec, nil
}

// DeleteProject drops a project's series. Only used when a project is
// explicitly removed from the registry; the pipeline never deletes.
func (s *Service) DeleteProject(ctx context.Context, projectID string) error {
	return s.repo.DeleteProject(ctx, projectID)
}

// Summarize computes the dashboard view for one project.
func (s *Service) Summarize(ctx context.Context, projectID, name string) (*Summary, error) {
	history, err := s.repo.History(ctx, projectID, HistoryOptions{})
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	summary := &Summary{ProjectID: projectID, Name: name, Measurements: len(history)}
	if len(history) == 0 {
		return summary, nil
	}

	latest := history[len(history)-1]
	last := latest.RecordedAt
	summary.LastRecorded = &last

	summary.Words, summary.WordsStaleSince = carryForward(history, func(r Record) *int { return r.Words })
	summary.Pages, summary.PagesStaleSince = carryForward(history, func(r Record) *int { return r.Pages })
	summary.WordsDelta = dayDelta(history, summary.Words, func(r Record) *int { return r.Words })
	summary.PagesDelta = dayDelta(history, summary.Pages, func(r Record) *int { return r.Pages })

	return summary, nil
}

// carryForward finds the newest non-nil value for one metric. When the most
// recent record has no value, the returned time marks how long the metric has
// been stale.
func carryForward(history []Record, value func(Record) *int) (*int, *time.Time) {
	for i := len(history) - 1; i >= 0; i-- {
		v := value(history[i])
		if v == nil {
			continue
		}
		current := *v
		if i == len(history)-1 {
			return &current, nil
		}
		staleSince := history[i].RecordedAt
		return &current, &staleSince
	}
	return nil, nil
}

// dayDelta compares the carried-forward value against the last non-nil value
// recorded on an earlier calendar day (UTC).
func dayDelta(history []Record, current *int, value func(Record) *int) int {
	if current == nil {
		return 0
	}
	latestDay := history[len(history)-1].RecordedAt.UTC().Truncate(24 * time.Hour)
	for i := len(history) - 1; i >= 0; i-- {
		rec := history[i]
		if !rec.RecordedAt.UTC().Truncate(24 * time.Hour).Before(latestDay) {
			continue
		}
		if v := value(rec); v != nil {
			return *current - *v
		}
	}
	return 0
}
