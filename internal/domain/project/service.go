package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mhagen/texwatch/internal/repository"
)

// Service handles registry operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new project service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// RegisterRequest defines project registration inputs.
type RegisterRequest struct {
	ID   string
	Name string
}

// Register adds a project to the registry.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Project, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrInvalidInput
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	}

	proj := &Project{
		ID:        id,
		Name:      req.Name,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, proj); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("registering project: %w", err)
	}

	return proj, nil
}

// EnsureRegistered registers any of the given projects missing from the
// registry. Existing entries are left untouched so their credential index and
// fingerprint survive restarts.
func (s *Service) EnsureRegistered(ctx context.Context, reqs []RegisterRequest) error {
	for _, req := range reqs {
		_, err := s.Register(ctx, req)
		if err == nil || errors.Is(err, ErrAlreadyExists) {
			continue
		}
		return fmt.Errorf("ensure project %s: %w", req.ID, err)
	}
	return nil
}

// Get fetches a project by ID.
func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	proj, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return proj, nil
}

// List returns all registered projects.
func (s *Service) List(ctx context.Context) ([]Project, error) {
	return s.repo.List(ctx)
}

// Remove deletes a project from the registry.
func (s *Service) Remove(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("removing project: %w", err)
	}
	return nil
}

// ClearCredential drops the remembered credential so the next cycle
// re-resolves from the full candidate list.
func (s *Service) ClearCredential(ctx context.Context, id string) error {
	if err := s.repo.SetCredentialIndex(ctx, id, nil); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("clearing credential: %w", err)
	}
	return nil
}
