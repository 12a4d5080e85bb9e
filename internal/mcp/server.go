package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mhagen/texwatch/internal/domain/metric"
	"github.com/mhagen/texwatch/internal/domain/project"
	"github.com/mhagen/texwatch/internal/tracker"
)

// ProjectService defines registry operations needed by MCP.
type ProjectService interface {
	List(ctx context.Context) ([]project.Project, error)
	Get(ctx context.Context, id string) (*project.Project, error)
}

// MetricService defines series operations needed by MCP.
type MetricService interface {
	Summarize(ctx context.Context, projectID, name string) (*metric.Summary, error)
	History(ctx context.Context, projectID string, opts metric.HistoryOptions) ([]metric.Record, error)
}

// CycleRunner triggers extraction cycles.
type CycleRunner interface {
	RunCycle(ctx context.Context) (*tracker.CycleReport, error)
}

// Services contains the domain services needed by MCP.
type Services struct {
	Projects ProjectService
	Metrics  MetricService
	Cycles   CycleRunner
}

const serverInstructions = `texwatch tracks writing progress across LaTeX projects.
Use list_projects for the current registry, get_progress for one project's
dashboard summary, get_metrics_history for the full time series, and
run_extraction_cycle to measure everything right now.`

// NewServer creates and configures an MCP server with all tools.
func NewServer(services Services, logger *slog.Logger) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "texwatch",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       logger,
	})

	registerTools(server, services)

	return server
}
