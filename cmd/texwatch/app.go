package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mhagen/texwatch/internal/config"
	"github.com/mhagen/texwatch/internal/domain/credential"
	"github.com/mhagen/texwatch/internal/domain/extract"
	"github.com/mhagen/texwatch/internal/domain/metric"
	"github.com/mhagen/texwatch/internal/domain/project"
	"github.com/mhagen/texwatch/internal/domain/syncer"
	"github.com/mhagen/texwatch/internal/gitfetch"
	"github.com/mhagen/texwatch/internal/latex"
	"github.com/mhagen/texwatch/internal/sqlite"
	"github.com/mhagen/texwatch/internal/tracker"
)

// app wires configuration, storage and services for the CLI commands.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	db     *sqlite.DB

	projects *project.Service
	metrics  *metric.Service
	syncer   *syncer.Service
	tracker  *tracker.Tracker
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return nil, err
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, err
	}

	projectRepo := sqlite.NewProjectRepository(db)
	metricRepo := sqlite.NewMetricRepository(db)

	projectSvc := project.NewService(projectRepo, logger)
	metricSvc := metric.NewService(metricRepo, logger)

	fetcher := gitfetch.New(cfg.Sync.GitBaseURL, cfg.Sync.GitTimeout.Std(), logger)
	resolver := credential.NewResolver(fetcher, projectRepo, logger)
	syncSvc := syncer.NewService(fetcher, projectRepo, cfg.Sync.DataDir, logger)

	extractSvc := extract.NewService(
		latex.NewWordCounter(cfg.Extract.TexcountPath, cfg.Extract.CountTimeout.Std(), cfg.Extract.CountBibliography),
		latex.NewTypesetter(cfg.Extract.PdflatexPath, cfg.Extract.TypesetTimeout.Std()),
		latex.NewPageReader(),
		logger,
	)

	trk := tracker.New(projectSvc, resolver, syncSvc, extractSvc, metricSvc,
		credential.FromTokens(cfg.Credentials), logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		projects: projectSvc,
		metrics:  metricSvc,
		syncer:   syncSvc,
		tracker:  trk,
	}, nil
}

// seedProjects registers projects declared in configuration, leaving
// existing registry entries untouched.
func (a *app) seedProjects(ctx context.Context) error {
	reqs := make([]project.RegisterRequest, 0, len(a.cfg.Projects))
	for _, proj := range a.cfg.Projects {
		reqs = append(reqs, project.RegisterRequest{ID: proj.ID, Name: proj.Name})
	}
	return a.projects.EnsureRegistered(ctx, reqs)
}

func (a *app) Close() error {
	return a.db.Close()
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
