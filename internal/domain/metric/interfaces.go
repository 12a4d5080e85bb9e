package metric

import "context"

// Repository provides append-only persistence for metric records.
type Repository interface {
	Append(ctx context.Context, rec *Record) error
	History(ctx context.Context, projectID string, opts HistoryOptions) ([]Record, error)
	Latest(ctx context.Context, projectID string) (*Record, error)
	DeleteProject(ctx context.Context, projectID string) error
}
