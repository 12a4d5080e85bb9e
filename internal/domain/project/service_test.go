package project_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mhagen/texwatch/internal/domain/project"
	"github.com/mhagen/texwatch/internal/repository"
	"github.com/mhagen/texwatch/internal/repository/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestProjectService_Register(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("Create", ctx, mock.Anything).Return(nil)

	svc := project.NewService(repo, discardLogger())
	proj, err := svc.Register(ctx, project.RegisterRequest{ID: "p1", Name: "Thesis"})
	require.NoError(t, err)
	require.Equal(t, "p1", proj.ID)
	require.Equal(t, "Thesis", proj.Name)
	require.False(t, proj.CreatedAt.IsZero())
}

func TestProjectService_RegisterGeneratesID(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("Create", ctx, mock.Anything).Return(nil)

	svc := project.NewService(repo, discardLogger())
	proj, err := svc.Register(ctx, project.RegisterRequest{Name: "Thesis"})
	require.NoError(t, err)
	require.NotEmpty(t, proj.ID)
}

func TestProjectService_RegisterValidation(t *testing.T) {
	ctx := context.Background()

	svc := project.NewService(&mocks.ProjectRepository{}, discardLogger())
	_, err := svc.Register(ctx, project.RegisterRequest{ID: "p1", Name: "  "})
	require.ErrorIs(t, err, project.ErrInvalidInput)
}

func TestProjectService_RegisterConflict(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("Create", ctx, mock.Anything).Return(repository.ErrConflict)

	svc := project.NewService(repo, discardLogger())
	_, err := svc.Register(ctx, project.RegisterRequest{ID: "p1", Name: "Thesis"})
	require.ErrorIs(t, err, project.ErrAlreadyExists)
}

func TestProjectService_EnsureRegisteredTolerates(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("Create", ctx, mock.MatchedBy(func(p *project.Project) bool { return p.ID == "p1" })).
		Return(repository.ErrConflict)
	repo.On("Create", ctx, mock.MatchedBy(func(p *project.Project) bool { return p.ID == "p2" })).
		Return(nil)

	svc := project.NewService(repo, discardLogger())
	err := svc.EnsureRegistered(ctx, []project.RegisterRequest{
		{ID: "p1", Name: "Thesis"},
		{ID: "p2", Name: "Paper"},
	})
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "Create", 2)
}

func TestProjectService_GetNotFound(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("Get", ctx, "missing").Return(nil, repository.ErrNotFound)

	svc := project.NewService(repo, discardLogger())
	_, err := svc.Get(ctx, "missing")
	require.ErrorIs(t, err, project.ErrProjectNotFound)
}

func TestProjectService_RemoveNotFound(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("Delete", ctx, "missing").Return(repository.ErrNotFound)

	svc := project.NewService(repo, discardLogger())
	err := svc.Remove(ctx, "missing")
	require.ErrorIs(t, err, project.ErrProjectNotFound)
}

func TestProjectService_ClearCredential(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("SetCredentialIndex", ctx, "p1", (*int)(nil)).Return(nil)

	svc := project.NewService(repo, discardLogger())
	require.NoError(t, svc.ClearCredential(ctx, "p1"))
	repo.AssertExpectations(t)
}
