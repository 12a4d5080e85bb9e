package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/mhagen/texwatch/internal/domain/credential"
	"github.com/mhagen/texwatch/internal/domain/project"
)

// Result reports the outcome of a successful synchronization.
type Result struct {
	Changed     bool
	Fingerprint string
}

// Fetcher is the transport that materializes upstream content. Errors wrap
// ErrPermanent or credential.ErrDenied where the transport can tell;
// everything else is treated as transient.
type Fetcher interface {
	// Clone performs a full fetch of the project into dest and returns the
	// content fingerprint.
	Clone(ctx context.Context, projectID string, cred credential.Credential, dest string) (string, error)
	// Pull incrementally updates an existing working copy and returns the new
	// content fingerprint.
	Pull(ctx context.Context, projectID string, cred credential.Credential, dir string) (string, error)
}

// ProjectStore persists the fingerprint of the last successful sync.
type ProjectStore interface {
	SetFingerprint(ctx context.Context, id, fingerprint string) error
}

// Service owns working copies under a single data directory, one per project.
type Service struct {
	fetcher  Fetcher
	projects ProjectStore
	dataDir  string
	logger   *slog.Logger
}

// NewService creates a synchronizer rooted at dataDir.
func NewService(fetcher Fetcher, projects ProjectStore, dataDir string, logger *slog.Logger) *Service {
	return &Service{fetcher: fetcher, projects: projects, dataDir: dataDir, logger: logger}
}

// Path returns the working copy location for a project.
func (s *Service) Path(projectID string) string {
	return filepath.Join(s.dataDir, projectID)
}

// Sync brings the project's working copy up to date and reports whether
// content changed since the last successful sync. A failed attempt never
// corrupts the existing working copy: first fetches land in a staging
// directory renamed into place, and a failed pull leaves the tree and stored
// fingerprint as they were.
func (s *Service) Sync(ctx context.Context, proj *project.Project, cred credential.Credential) (Result, error) {
	path := s.Path(proj.ID)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return s.initialFetch(ctx, proj, cred, path)
	} else if err != nil {
		return Result{}, fmt.Errorf("stat working copy: %w (%w)", err, ErrTransient)
	}

	fingerprint, err := s.fetcher.Pull(ctx, proj.ID, cred, path)
	if err != nil {
		return Result{}, classify(fmt.Errorf("pull %s: %w", proj.ID, err))
	}

	if fingerprint == proj.Fingerprint {
		s.logger.Debug("no upstream changes", "project", proj.ID, "fingerprint", fingerprint)
		return Result{Changed: false, Fingerprint: fingerprint}, nil
	}

	if err := s.persist(ctx, proj, fingerprint); err != nil {
		return Result{}, err
	}
	s.logger.Info("working copy updated", "project", proj.ID, "fingerprint", fingerprint)
	return Result{Changed: true, Fingerprint: fingerprint}, nil
}

func (s *Service) initialFetch(ctx context.Context, proj *project.Project, cred credential.Credential, path string) (Result, error) {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("prepare data dir: %w (%w)", err, ErrTransient)
	}

	staging := filepath.Join(s.dataDir, "."+proj.ID+".staging-"+uuid.NewString())
	defer os.RemoveAll(staging)

	fingerprint, err := s.fetcher.Clone(ctx, proj.ID, cred, staging)
	if err != nil {
		return Result{}, classify(fmt.Errorf("clone %s: %w", proj.ID, err))
	}

	if err := os.Rename(staging, path); err != nil {
		return Result{}, fmt.Errorf("promote working copy: %w (%w)", err, ErrTransient)
	}

	if err := s.persist(ctx, proj, fingerprint); err != nil {
		return Result{}, err
	}
	s.logger.Info("working copy created", "project", proj.ID, "fingerprint", fingerprint)
	return Result{Changed: true, Fingerprint: fingerprint}, nil
}

func (s *Service) persist(ctx context.Context, proj *project.Project, fingerprint string) error {
	if err := s.projects.SetFingerprint(ctx, proj.ID, fingerprint); err != nil {
		return fmt.Errorf("persisting fingerprint: %w (%w)", err, ErrTransient)
	}
	proj.Fingerprint = fingerprint
	return nil
}

// Remove deletes a project's working copy. Part of registry removal, not the
// pipeline.
func (s *Service) Remove(projectID string) error {
	return os.RemoveAll(s.Path(projectID))
}

// classify tags fetcher errors with the retry taxonomy: denied credentials
// are permanent (the orchestrator must re-resolve), untagged failures are
// transient.
func classify(err error) error {
	if errors.Is(err, ErrPermanent) || errors.Is(err, ErrTransient) {
		return err
	}
	if errors.Is(err, credential.ErrDenied) {
		return fmt.Errorf("%w (%w)", err, ErrPermanent)
	}
	return fmt.Errorf("%w (%w)", err, ErrTransient)
}
