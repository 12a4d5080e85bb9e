package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mhagen/texwatch/internal/domain/metric"
	"github.com/mhagen/texwatch/internal/domain/project"
	"github.com/mhagen/texwatch/internal/tracker"
)

type fakeProjects struct {
	projects []project.Project
}

func (f *fakeProjects) List(ctx context.Context) ([]project.Project, error) {
	return f.projects, nil
}

func (f *fakeProjects) Get(ctx context.Context, id string) (*project.Project, error) {
	for _, proj := range f.projects {
		if proj.ID == id {
			return &proj, nil
		}
	}
	return nil, project.ErrProjectNotFound
}

type fakeMetrics struct {
	summary  *metric.Summary
	history  []metric.Record
	lastOpts metric.HistoryOptions
}

func (f *fakeMetrics) Summarize(ctx context.Context, projectID, name string) (*metric.Summary, error) {
	return f.summary, nil
}

func (f *fakeMetrics) History(ctx context.Context, projectID string, opts metric.HistoryOptions) ([]metric.Record, error) {
	f.lastOpts = opts
	return f.history, nil
}

type fakeRunner struct {
	report *tracker.CycleReport
	err    error
}

func (f *fakeRunner) RunCycle(ctx context.Context) (*tracker.CycleReport, error) {
	return f.report, f.err
}

func intPtr(v int) *int { return &v }

func TestListProjectsTool(t *testing.T) {
	created := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	projects := &fakeProjects{projects: []project.Project{
		{ID: "p1", Name: "Thesis", Fingerprint: "abc123", CreatedAt: created},
	}}

	handler := listProjectsHandler(projects)
	_, result, err := handler(context.Background(), nil, ListProjectsInput{})
	require.NoError(t, err)
	require.Len(t, result.Projects, 1)
	require.Equal(t, "p1", result.Projects[0].ID)
	require.Equal(t, "abc123", result.Projects[0].Fingerprint)
	require.Equal(t, "2026-02-01T09:00:00Z", result.Projects[0].CreatedAt)
}

func TestGetProgressTool(t *testing.T) {
	stale := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	projects := &fakeProjects{projects: []project.Project{{ID: "p1", Name: "Thesis"}}}
	metrics := &fakeMetrics{summary: &metric.Summary{
		ProjectID:       "p1",
		Name:            "Thesis",
		Words:           intPtr(4821),
		WordsDelta:      120,
		PagesStaleSince: &stale,
		Measurements:    14,
	}}

	handler := getProgressHandler(projects, metrics)
	_, result, err := handler(context.Background(), nil, GetProgressInput{ProjectID: "p1"})
	require.NoError(t, err)
	require.Equal(t, 4821, *result.Words)
	require.Nil(t, result.Pages)
	require.Equal(t, 120, result.WordsDelta)
	require.Equal(t, "2026-03-01T12:00:00Z", result.PagesStaleSince)
	require.Equal(t, 14, result.Measurements)
}

func TestGetProgressToolUnknownProject(t *testing.T) {
	handler := getProgressHandler(&fakeProjects{}, &fakeMetrics{})
	_, _, err := handler(context.Background(), nil, GetProgressInput{ProjectID: "nope"})
	require.ErrorIs(t, err, project.ErrProjectNotFound)
}

func TestGetMetricsHistoryTool(t *testing.T) {
	projects := &fakeProjects{projects: []project.Project{{ID: "p1", Name: "Thesis"}}}
	metrics := &fakeMetrics{history: []metric.Record{
		{ProjectID: "p1", RecordedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), Words: intPtr(4821), Pages: intPtr(37)},
	}}

	handler := getMetricsHistoryHandler(projects, metrics)
	_, result, err := handler(context.Background(), nil, GetMetricsHistoryInput{
		ProjectID: "p1",
		Since:     "2026-03-01T00:00:00Z",
		Limit:     10,
	})
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	require.Equal(t, 4821, *result.Records[0].Words)
	require.NotNil(t, metrics.lastOpts.Since)
	require.Equal(t, 10, metrics.lastOpts.Limit)
}

func TestGetMetricsHistoryToolBadInput(t *testing.T) {
	projects := &fakeProjects{projects: []project.Project{{ID: "p1", Name: "Thesis"}}}
	handler := getMetricsHistoryHandler(projects, &fakeMetrics{})
	_, _, err := handler(context.Background(), nil, GetMetricsHistoryInput{
		ProjectID: "p1",
		Since:     "yesterday",
	})
	require.Error(t, err)
}

func TestRunCycleTool(t *testing.T) {
	runner := &fakeRunner{report: &tracker.CycleReport{
		CycleID: "c1",
		Outcome: tracker.OutcomePartialFailure,
		Results: []tracker.ProjectResult{
			{ProjectID: "p1", Name: "Thesis", Changed: true, Record: &metric.Record{Words: intPtr(4821)}},
			{ProjectID: "p2", Name: "Paper", Stage: "sync", Error: "access denied"},
		},
	}}

	handler := runCycleHandler(runner)
	_, result, err := handler(context.Background(), nil, RunCycleInput{})
	require.NoError(t, err)
	require.Equal(t, "c1", result.CycleID)
	require.Equal(t, "partial_failure", result.Outcome)
	require.Len(t, result.Results, 2)
	require.Equal(t, 4821, *result.Results[0].Words)
	require.Equal(t, "access denied", result.Results[1].Error)
}

func TestRunCycleToolSurvivesSessionCancel(t *testing.T) {
	runner := &ctxCheckRunner{report: &tracker.CycleReport{CycleID: "c1"}}
	handler := runCycleHandler(runner)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, result, err := handler(ctx, nil, RunCycleInput{})
	require.NoError(t, err)
	require.Equal(t, "c1", result.CycleID)
}

// ctxCheckRunner fails when the cycle context carries the caller's
// cancellation.
type ctxCheckRunner struct {
	report *tracker.CycleReport
}

func (r *ctxCheckRunner) RunCycle(ctx context.Context) (*tracker.CycleReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.report, nil
}

func TestRunCycleToolConflict(t *testing.T) {
	handler := runCycleHandler(&fakeRunner{err: tracker.ErrCycleInProgress})
	_, _, err := handler(context.Background(), nil, RunCycleInput{})
	require.ErrorIs(t, err, tracker.ErrCycleInProgress)
}
