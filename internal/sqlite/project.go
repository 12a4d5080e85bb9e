package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mhagen/texwatch/internal/domain/project"
	"github.com/mhagen/texwatch/internal/repository"
)

// ProjectRepository implements project.Repository for SQLite
type ProjectRepository struct {
	db *DB
}

var _ project.Repository = (*ProjectRepository)(nil)

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create registers a new project
func (r *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	query := `
		INSERT INTO projects (id, name, credential_index, fingerprint, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		proj.ID,
		proj.Name,
		nullableIndex(proj.CredentialIndex),
		proj.Fingerprint,
		proj.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// Get retrieves a project by ID
func (r *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	query := `
		SELECT id, name, credential_index, fingerprint, created_at
		FROM projects
		WHERE id = ?
	`

	proj, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return proj, nil
}

// List returns all registered projects ordered by creation time
func (r *ProjectRepository) List(ctx context.Context) ([]project.Project, error) {
	query := `
		SELECT id, name, credential_index, fingerprint, created_at
		FROM projects
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []project.Project
	for rows.Next() {
		proj, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *proj)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}

	return projects, nil
}

// Delete removes a project from the registry. The caller deletes the metric
// series first; the foreign key enforces the ordering.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return requireRow(result)
}

// SetCredentialIndex updates the remembered credential; nil clears it.
func (r *ProjectRepository) SetCredentialIndex(ctx context.Context, id string, index *int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE projects SET credential_index = ? WHERE id = ?`,
		nullableIndex(index), id)
	if err != nil {
		return fmt.Errorf("failed to set credential index: %w", err)
	}
	return requireRow(result)
}

// SetFingerprint updates the fingerprint of the last successful sync.
func (r *ProjectRepository) SetFingerprint(ctx context.Context, id, fingerprint string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE projects SET fingerprint = ? WHERE id = ?`,
		fingerprint, id)
	if err != nil {
		return fmt.Errorf("failed to set fingerprint: %w", err)
	}
	return requireRow(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*project.Project, error) {
	var proj project.Project
	var index sql.NullInt64
	if err := row.Scan(&proj.ID, &proj.Name, &index, &proj.Fingerprint, &proj.CreatedAt); err != nil {
		return nil, err
	}
	if index.Valid {
		i := int(index.Int64)
		proj.CredentialIndex = &i
	}
	return &proj, nil
}

func nullableIndex(index *int) any {
	if index == nil {
		return nil
	}
	return *index
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
