package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/mhagen/texwatch/internal/domain/metric"
	"github.com/mhagen/texwatch/internal/repository"
)

// MetricRepository implements metric.Repository for SQLite
type MetricRepository struct {
	db *DB
}

var _ metric.Repository = (*MetricRepository)(nil)

// NewMetricRepository creates a new MetricRepository
func NewMetricRepository(db *DB) *MetricRepository {
	return &MetricRepository{db: db}
}

// Append inserts a record. Rows are never updated or removed by the pipeline.
func (r *MetricRepository) Append(ctx context.Context, rec *metric.Record) error {
	query := `
		INSERT INTO metrics (project_id, recorded_at, word_count, page_count, fingerprint, cycle_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.ProjectID,
		rec.RecordedAt.UTC(),
		nullableCount(rec.Words),
		nullableCount(rec.Pages),
		rec.Fingerprint,
		rec.CycleID,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to append metric: %w", err)
	}

	return nil
}

// History returns a project's records ordered by timestamp, optionally
// bounded by a time range and limit.
func (r *MetricRepository) History(ctx context.Context, projectID string, opts metric.HistoryOptions) ([]metric.Record, error) {
	builder := sq.Select("project_id", "recorded_at", "word_count", "page_count", "fingerprint", "cycle_id").
		From("metrics").
		Where(sq.Eq{"project_id": projectID}).
		OrderBy("recorded_at ASC", "id ASC")

	if opts.Since != nil {
		builder = builder.Where(sq.GtOrEq{"recorded_at": opts.Since.UTC()})
	}
	if opts.Until != nil {
		builder = builder.Where(sq.LtOrEq{"recorded_at": opts.Until.UTC()})
	}
	if opts.Limit > 0 {
		builder = builder.Limit(uint64(opts.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build history query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []metric.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan metric: %w", err)
		}
		records = append(records, *rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating metric rows: %w", err)
	}

	return records, nil
}

// Latest returns the most recent record for a project.
func (r *MetricRepository) Latest(ctx context.Context, projectID string) (*metric.Record, error) {
	query := `
		SELECT project_id, recorded_at, word_count, page_count, fingerprint, cycle_id
		FROM metrics
		WHERE project_id = ?
		ORDER BY recorded_at DESC, id DESC
		LIMIT 1
	`

	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, projectID))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest metric: %w", err)
	}

	return rec, nil
}

// DeleteProject removes a project's whole series. Used only on explicit
// project removal.
func (r *MetricRepository) DeleteProject(ctx context.Context, projectID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM metrics WHERE project_id = ?`, projectID)
	if err != nil {
		return fmt.Errorf("failed to delete metrics: %w", err)
	}
	return nil
}

func scanRecord(row rowScanner) (*metric.Record, error) {
	var rec metric.Record
	var words, pages sql.NullInt64
	if err := row.Scan(&rec.ProjectID, &rec.RecordedAt, &words, &pages, &rec.Fingerprint, &rec.CycleID); err != nil {
		return nil, err
	}
	if words.Valid {
		w := int(words.Int64)
		rec.Words = &w
	}
	if pages.Valid {
		p := int(pages.Int64)
		rec.Pages = &p
	}
	rec.RecordedAt = rec.RecordedAt.UTC()
	return &rec, nil
}

func nullableCount(count *int) any {
	if count == nil {
		return nil
	}
	return *count
}
