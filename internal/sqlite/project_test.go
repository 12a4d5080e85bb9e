package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mhagen/texwatch/internal/domain/project"
	"github.com/mhagen/texwatch/internal/repository"
)

func TestProjectRepository_Create(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	proj := &project.Project{
		ID:        "5f2b8c3d9e1a4b6c7d8e9f0a",
		Name:      "Thesis",
		CreatedAt: time.Now().UTC(),
	}

	err := repo.Create(ctx, proj)
	require.NoError(t, err)

	retrieved, err := repo.Get(ctx, proj.ID)
	require.NoError(t, err)
	require.Equal(t, proj.ID, retrieved.ID)
	require.Equal(t, proj.Name, retrieved.Name)
	require.Nil(t, retrieved.CredentialIndex)
	require.Empty(t, retrieved.Fingerprint)
}

func TestProjectRepository_CreateDuplicate(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	proj := &project.Project{ID: "p1", Name: "Thesis", CreatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, proj))

	err := repo.Create(ctx, proj)
	require.Equal(t, repository.ErrConflict, err)
}

func TestProjectRepository_Get(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	_, err := repo.Get(ctx, "nonexistent")
	require.Equal(t, repository.ErrNotFound, err)
}

func TestProjectRepository_List(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	base := time.Now().UTC()
	first := &project.Project{ID: "p1", Name: "Thesis", CreatedAt: base}
	second := &project.Project{ID: "p2", Name: "Paper", CreatedAt: base.Add(time.Second)}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	projects, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	require.Equal(t, "p1", projects[0].ID)
	require.Equal(t, "p2", projects[1].ID)
}

func TestProjectRepository_Delete(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	proj := &project.Project{ID: "p1", Name: "Thesis", CreatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, proj))

	err := repo.Delete(ctx, "p1")
	require.NoError(t, err)

	_, err = repo.Get(ctx, "p1")
	require.Equal(t, repository.ErrNotFound, err)

	err = repo.Delete(ctx, "p1")
	require.Equal(t, repository.ErrNotFound, err)
}

func TestProjectRepository_SetCredentialIndex(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	proj := &project.Project{ID: "p1", Name: "Thesis", CreatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, proj))

	index := 2
	err := repo.SetCredentialIndex(ctx, "p1", &index)
	require.NoError(t, err)

	retrieved, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, retrieved.CredentialIndex)
	require.Equal(t, 2, *retrieved.CredentialIndex)

	// Clearing the index forces re-resolution on the next cycle
	err = repo.SetCredentialIndex(ctx, "p1", nil)
	require.NoError(t, err)

	retrieved, err = repo.Get(ctx, "p1")
	require.NoError(t, err)
	require.Nil(t, retrieved.CredentialIndex)

	err = repo.SetCredentialIndex(ctx, "nonexistent", &index)
	require.Equal(t, repository.ErrNotFound, err)
}

func TestProjectRepository_SetFingerprint(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	proj := &project.Project{ID: "p1", Name: "Thesis", CreatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, proj))

	err := repo.SetFingerprint(ctx, "p1", "abc123")
	require.NoError(t, err)

	retrieved, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "abc123", retrieved.Fingerprint)

	err = repo.SetFingerprint(ctx, "nonexistent", "abc123")
	require.Equal(t, repository.ErrNotFound, err)
}
