package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mhagen/texwatch/internal/domain/metric"
	"github.com/mhagen/texwatch/internal/domain/project"
	"github.com/mhagen/texwatch/internal/tracker"
)

// ProjectService is the registry surface the dashboard needs.
type ProjectService interface {
	List(ctx context.Context) ([]project.Project, error)
	Get(ctx context.Context, id string) (*project.Project, error)
}

// MetricService is the series surface the dashboard needs.
type MetricService interface {
	Summarize(ctx context.Context, projectID, name string) (*metric.Summary, error)
	History(ctx context.Context, projectID string, opts metric.HistoryOptions) ([]metric.Record, error)
}

// CycleRunner triggers extraction cycles out of band.
type CycleRunner interface {
	RunCycle(ctx context.Context) (*tracker.CycleReport, error)
}

// Server exposes the read-side dashboard API and a manual cycle trigger.
type Server struct {
	projects ProjectService
	metrics  MetricService
	cycles   CycleRunner
	logger   *slog.Logger
}

// New creates an API server.
func New(projects ProjectService, metrics MetricService, cycles CycleRunner, logger *slog.Logger) *Server {
	return &Server{projects: projects, metrics: metrics, cycles: cycles, logger: logger}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/projects", s.handleListProjects)
	mux.HandleFunc("GET /api/projects/{id}/metrics", s.handleProjectMetrics)
	mux.HandleFunc("POST /api/cycles", s.handleRunCycle)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListProjects returns the dashboard summary for every project.
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	projects, err := s.projects.List(ctx)
	if err != nil {
		s.logger.Error("listing projects failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list projects")
		return
	}

	summaries := make([]metric.Summary, 0, len(projects))
	for _, proj := range projects {
		summary, err := s.metrics.Summarize(ctx, proj.ID, proj.Name)
		if err != nil {
			s.logger.Error("summarizing project failed", "project", proj.ID, "error", err)
			s.writeError(w, http.StatusInternalServerError, "failed to summarize projects")
			return
		}
		summaries = append(summaries, *summary)
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"projects": summaries})
}

// handleProjectMetrics returns a project's metric history, optionally bounded
// by since, until and limit query parameters.
func (s *Server) handleProjectMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	proj, err := s.projects.Get(ctx, id)
	if err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			s.writeError(w, http.StatusNotFound, "project not found")
			return
		}
		s.logger.Error("getting project failed", "project", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get project")
		return
	}

	opts, err := historyOptions(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	history, err := s.metrics.History(ctx, proj.ID, opts)
	if err != nil {
		s.logger.Error("loading history failed", "project", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if history == nil {
		history = []metric.Record{}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"project_id": proj.ID,
		"name":       proj.Name,
		"records":    history,
	})
}

// handleRunCycle triggers a cycle immediately. A cycle already in flight is
// reported as a conflict, not queued. The cycle runs detached from the
// request context: a client disconnect must not cancel in-flight git or
// typesetting work, which the per-tool timeouts already bound.
func (s *Server) handleRunCycle(w http.ResponseWriter, r *http.Request) {
	report, err := s.cycles.RunCycle(context.WithoutCancel(r.Context()))
	if err != nil {
		if errors.Is(err, tracker.ErrCycleInProgress) {
			s.writeError(w, http.StatusConflict, "cycle already in progress")
			return
		}
		s.logger.Error("manual cycle failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "cycle failed")
		return
	}

	s.writeJSON(w, http.StatusOK, report)
}

func historyOptions(r *http.Request) (metric.HistoryOptions, error) {
	var opts metric.HistoryOptions
	query := r.URL.Query()

	if raw := query.Get("since"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return opts, errors.New("invalid since parameter, expected RFC 3339")
		}
		opts.Since = &ts
	}
	if raw := query.Get("until"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return opts, errors.New("invalid until parameter, expected RFC 3339")
		}
		opts.Until = &ts
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return opts, errors.New("invalid limit parameter")
		}
		opts.Limit = limit
	}

	return opts, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("writing response failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
