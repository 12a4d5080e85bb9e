package project

import "context"

// Repository provides persistence for the project registry.
type Repository interface {
	Create(ctx context.Context, proj *Project) error
	Get(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context) ([]Project, error)
	Delete(ctx context.Context, id string) error
	SetCredentialIndex(ctx context.Context, id string, index *int) error
	SetFingerprint(ctx context.Context, id, fingerprint string) error
}
