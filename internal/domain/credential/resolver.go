package credential

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mhagen/texwatch/internal/domain/project"
)

// Prober performs a low-cost access check against an upstream project.
// A denial is reported by wrapping ErrDenied; anything else is treated as
// transient (network, timeout) and aborts resolution for this cycle.
type Prober interface {
	Probe(ctx context.Context, projectID string, cred Credential) error
}

// ProjectStore persists the winning credential index on the project.
type ProjectStore interface {
	SetCredentialIndex(ctx context.Context, id string, index *int) error
}

// Resolver picks a usable credential for a project from the configured
// ordered candidate list.
type Resolver struct {
	prober   Prober
	projects ProjectStore
	logger   *slog.Logger
}

// NewResolver creates a credential resolver.
func NewResolver(prober Prober, projects ProjectStore, logger *slog.Logger) *Resolver {
	return &Resolver{prober: prober, projects: projects, logger: logger}
}

// Resolve returns the first credential that passes a probe against the
// project, remembering the winner on the project for an O(1) fast path next
// cycle. A transient probe failure aborts resolution without disqualifying
// any candidate; ErrNoAccessible is returned only after every candidate has
// been denied.
func (r *Resolver) Resolve(ctx context.Context, proj *project.Project, candidates []Credential) (Credential, error) {
	if len(candidates) == 0 {
		return Credential{}, ErrNoAccessible
	}

	denied := -1
	if idx := proj.CredentialIndex; idx != nil && *idx >= 0 && *idx < len(candidates) {
		cred := candidates[*idx]
		err := r.prober.Probe(ctx, proj.ID, cred)
		if err == nil {
			return cred, nil
		}
		if !errors.Is(err, ErrDenied) {
			return Credential{}, fmt.Errorf("probing remembered credential %d: %w", cred.Index, err)
		}
		denied = cred.Index
		r.logger.Warn("remembered credential denied, rescanning",
			"project", proj.ID, "credential", cred.Index)
	}

	for _, cred := range candidates {
		if cred.Index == denied {
			continue
		}
		err := r.prober.Probe(ctx, proj.ID, cred)
		if err == nil {
			if err := r.persist(ctx, proj, cred.Index); err != nil {
				return Credential{}, err
			}
			return cred, nil
		}
		if errors.Is(err, ErrDenied) {
			continue
		}
		return Credential{}, fmt.Errorf("probing credential %d: %w", cred.Index, err)
	}

	return Credential{}, ErrNoAccessible
}

func (r *Resolver) persist(ctx context.Context, proj *project.Project, index int) error {
	if proj.CredentialIndex != nil && *proj.CredentialIndex == index {
		return nil
	}
	if err := r.projects.SetCredentialIndex(ctx, proj.ID, &index); err != nil {
		return fmt.Errorf("persisting credential index: %w", err)
	}
	idx := index
	proj.CredentialIndex = &idx
	r.logger.Info("credential resolved", "project", proj.ID, "credential", index)
	return nil
}
