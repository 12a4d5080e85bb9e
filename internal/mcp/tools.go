package mcp

import (
	"context"
	"fmt"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mhagen/texwatch/internal/domain/metric"
)

// ListProjectsInput is the empty input for list_projects.
type ListProjectsInput struct{}

// ProjectEntry is one registry row in list_projects output.
type ProjectEntry struct {
	ID          string `json:"id" jsonschema:"project identifier"`
	Name        string `json:"name" jsonschema:"display name"`
	Fingerprint string `json:"fingerprint,omitempty" jsonschema:"content fingerprint of the last successful sync"`
	CreatedAt   string `json:"created_at" jsonschema:"registration time, RFC 3339"`
}

// ListProjectsResult is the list_projects output.
type ListProjectsResult struct {
	Projects []ProjectEntry `json:"projects"`
}

// GetProgressInput selects the project to summarize.
type GetProgressInput struct {
	ProjectID string `json:"project_id" jsonschema:"project identifier"`
}

// GetProgressResult is the dashboard summary for one project.
type GetProgressResult struct {
	ProjectID       string `json:"project_id"`
	Name            string `json:"name"`
	Words           *int   `json:"words" jsonschema:"current word count, null when never measured"`
	Pages           *int   `json:"pages" jsonschema:"current page count, null when never measured"`
	WordsDelta      int    `json:"words_delta" jsonschema:"words written since the previous calendar day"`
	PagesDelta      int    `json:"pages_delta" jsonschema:"pages added since the previous calendar day"`
	WordsStaleSince string `json:"words_stale_since,omitempty" jsonschema:"set when the word count is carried forward from an older record"`
	PagesStaleSince string `json:"pages_stale_since,omitempty" jsonschema:"set when the page count is carried forward from an older record"`
	LastRecorded    string `json:"last_recorded,omitempty" jsonschema:"time of the newest record, RFC 3339"`
	Measurements    int    `json:"measurements" jsonschema:"total records in the series"`
}

// GetMetricsHistoryInput selects a project's time series.
type GetMetricsHistoryInput struct {
	ProjectID string `json:"project_id" jsonschema:"project identifier"`
	Since     string `json:"since,omitempty" jsonschema:"inclusive lower bound, RFC 3339"`
	Until     string `json:"until,omitempty" jsonschema:"inclusive upper bound, RFC 3339"`
	Limit     int    `json:"limit,omitempty" jsonschema:"maximum number of records, oldest first"`
}

// HistoryEntry is one record in get_metrics_history output.
type HistoryEntry struct {
	RecordedAt  string `json:"recorded_at"`
	Words       *int   `json:"words"`
	Pages       *int   `json:"pages"`
	Fingerprint string `json:"fingerprint,omitempty"`
	CycleID     string `json:"cycle_id,omitempty"`
}

// GetMetricsHistoryResult is the get_metrics_history output.
type GetMetricsHistoryResult struct {
	ProjectID string         `json:"project_id"`
	Records   []HistoryEntry `json:"records"`
}

// RunCycleInput is the empty input for run_extraction_cycle.
type RunCycleInput struct{}

// CycleEntry is one project's outcome in run_extraction_cycle output.
type CycleEntry struct {
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
	Changed   bool   `json:"changed"`
	Words     *int   `json:"words,omitempty"`
	Pages     *int   `json:"pages,omitempty"`
	Error     string `json:"error,omitempty"`
}

// RunCycleResult is the run_extraction_cycle output.
type RunCycleResult struct {
	CycleID string       `json:"cycle_id"`
	Outcome string       `json:"outcome" jsonschema:"all_succeeded, partial_failure or no_projects"`
	Results []CycleEntry `json:"results"`
}

func registerTools(server *sdkmcp.Server, services Services) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_projects",
		Description: "Lists every tracked LaTeX project",
	}, listProjectsHandler(services.Projects))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_progress",
		Description: "Returns the current progress summary for one project",
	}, getProgressHandler(services.Projects, services.Metrics))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_metrics_history",
		Description: "Returns a project's metric time series, oldest first",
	}, getMetricsHistoryHandler(services.Projects, services.Metrics))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "run_extraction_cycle",
		Description: "Runs an extraction cycle over all projects immediately",
	}, runCycleHandler(services.Cycles))
}

func listProjectsHandler(projects ProjectService) sdkmcp.ToolHandlerFor[ListProjectsInput, ListProjectsResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ ListProjectsInput) (*sdkmcp.CallToolResult, ListProjectsResult, error) {
		list, err := projects.List(ctx)
		if err != nil {
			return nil, ListProjectsResult{}, fmt.Errorf("list projects failed: %w", err)
		}

		result := ListProjectsResult{Projects: make([]ProjectEntry, 0, len(list))}
		for _, proj := range list {
			result.Projects = append(result.Projects, ProjectEntry{
				ID:          proj.ID,
				Name:        proj.Name,
				Fingerprint: proj.Fingerprint,
				CreatedAt:   proj.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
		return nil, result, nil
	}
}

func getProgressHandler(projects ProjectService, metrics MetricService) sdkmcp.ToolHandlerFor[GetProgressInput, GetProgressResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input GetProgressInput) (*sdkmcp.CallToolResult, GetProgressResult, error) {
		proj, err := projects.Get(ctx, input.ProjectID)
		if err != nil {
			return nil, GetProgressResult{}, fmt.Errorf("get project failed: %w", err)
		}

		summary, err := metrics.Summarize(ctx, proj.ID, proj.Name)
		if err != nil {
			return nil, GetProgressResult{}, fmt.Errorf("summarize failed: %w", err)
		}

		result := GetProgressResult{
			ProjectID:       summary.ProjectID,
			Name:            summary.Name,
			Words:           summary.Words,
			Pages:           summary.Pages,
			WordsDelta:      summary.WordsDelta,
			PagesDelta:      summary.PagesDelta,
			WordsStaleSince: formatTime(summary.WordsStaleSince),
			PagesStaleSince: formatTime(summary.PagesStaleSince),
			LastRecorded:    formatTime(summary.LastRecorded),
			Measurements:    summary.Measurements,
		}
		return nil, result, nil
	}
}

func getMetricsHistoryHandler(projects ProjectService, metrics MetricService) sdkmcp.ToolHandlerFor[GetMetricsHistoryInput, GetMetricsHistoryResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input GetMetricsHistoryInput) (*sdkmcp.CallToolResult, GetMetricsHistoryResult, error) {
		proj, err := projects.Get(ctx, input.ProjectID)
		if err != nil {
			return nil, GetMetricsHistoryResult{}, fmt.Errorf("get project failed: %w", err)
		}

		opts, err := historyOptions(input)
		if err != nil {
			return nil, GetMetricsHistoryResult{}, err
		}

		history, err := metrics.History(ctx, proj.ID, opts)
		if err != nil {
			return nil, GetMetricsHistoryResult{}, fmt.Errorf("history failed: %w", err)
		}

		result := GetMetricsHistoryResult{
			ProjectID: proj.ID,
			Records:   make([]HistoryEntry, 0, len(history)),
		}
		for _, rec := range history {
			result.Records = append(result.Records, HistoryEntry{
				RecordedAt:  rec.RecordedAt.UTC().Format(time.RFC3339Nano),
				Words:       rec.Words,
				Pages:       rec.Pages,
				Fingerprint: rec.Fingerprint,
				CycleID:     rec.CycleID,
			})
		}
		return nil, result, nil
	}
}

func runCycleHandler(cycles CycleRunner) sdkmcp.ToolHandlerFor[RunCycleInput, RunCycleResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ RunCycleInput) (*sdkmcp.CallToolResult, RunCycleResult, error) {
		// A dropped client session must not cancel in-flight git or
		// typesetting work; the per-tool timeouts bound the cycle.
		report, err := cycles.RunCycle(context.WithoutCancel(ctx))
		if err != nil {
			return nil, RunCycleResult{}, fmt.Errorf("cycle failed: %w", err)
		}

		result := RunCycleResult{
			CycleID: report.CycleID,
			Outcome: string(report.Outcome),
			Results: make([]CycleEntry, 0, len(report.Results)),
		}
		for _, res := range report.Results {
			entry := CycleEntry{
				ProjectID: res.ProjectID,
				Name:      res.Name,
				Changed:   res.Changed,
				Error:     res.Error,
			}
			if res.Record != nil {
				entry.Words = res.Record.Words
				entry.Pages = res.Record.Pages
			}
			result.Results = append(result.Results, entry)
		}
		return nil, result, nil
	}
}

func historyOptions(input GetMetricsHistoryInput) (metric.HistoryOptions, error) {
	var opts metric.HistoryOptions
	if input.Since != "" {
		ts, err := time.Parse(time.RFC3339, input.Since)
		if err != nil {
			return opts, fmt.Errorf("invalid since, expected RFC 3339: %w", err)
		}
		opts.Since = &ts
	}
	if input.Until != "" {
		ts, err := time.Parse(time.RFC3339, input.Until)
		if err != nil {
			return opts, fmt.Errorf("invalid until, expected RFC 3339: %w", err)
		}
		opts.Until = &ts
	}
	if input.Limit < 0 {
		return opts, fmt.Errorf("invalid limit %d", input.Limit)
	}
	opts.Limit = input.Limit
	return opts, nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
