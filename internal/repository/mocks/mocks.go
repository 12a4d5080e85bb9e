package mocks

import (
	"context"

	"github.com/mhagen/texwatch/internal/domain/metric"
	"github.com/mhagen/texwatch/internal/domain/project"
	"github.com/stretchr/testify/mock"
)

// ProjectRepository is a mock for project.Repository.
type ProjectRepository struct {
	mock.Mock
}

var _ project.Repository = (*ProjectRepository)(nil)

func (m *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	args := m.Called(ctx, proj)
	return args.Error(0)
}

func (m *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	args := m.Called(ctx, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) List(ctx context.Context) ([]project.Project, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ProjectRepository) SetCredentialIndex(ctx context.Context, id string, index *int) error {
	args := m.Called(ctx, id, index)
	return args.Error(0)
}

func (m *ProjectRepository) SetFingerprint(ctx context.Context, id, fingerprint string) error {
	args := m.Called(ctx, id, fingerprint)
	return args.Error(0)
}

// MetricRepository is a mock for metric.Repository.
type MetricRepository struct {
	mock.Mock
}

var _ metric.Repository = (*MetricRepository)(nil)

func (m *MetricRepository) Append(ctx context.Context, rec *metric.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MetricRepository) History(ctx context.Context, projectID string, opts metric.HistoryOptions) ([]metric.Record, error) {
	args := m.Called(ctx, projectID, opts)
	if list, ok := args.Get(0).([]metric.Record); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MetricRepository) Latest(ctx context.Context, projectID string) (*metric.Record, error) {
	args := m.Called(ctx, projectID)
	if rec, ok := args.Get(0).(*metric.Record); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MetricRepository) DeleteProject(ctx context.Context, projectID string) error {
	args := m.Called(ctx, projectID)
	return args.Error(0)
}
