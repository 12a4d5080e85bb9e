package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/mhagen/texwatch/internal/domain/credential"
	"github.com/mhagen/texwatch/internal/domain/extract"
	"github.com/mhagen/texwatch/internal/domain/metric"
	"github.com/mhagen/texwatch/internal/domain/project"
	"github.com/mhagen/texwatch/internal/domain/syncer"
)

// ErrCycleInProgress is returned when a cycle is requested while another is
// still running. The request is skipped, never queued.
var ErrCycleInProgress = errors.New("extraction cycle already in progress")

// Recorded timestamps within one project are strictly increasing even when
// cycles finish inside the same clock tick.
const timestampEpsilon = time.Millisecond

// Outcome summarizes a whole cycle.
type Outcome string

const (
	OutcomeAllSucceeded   Outcome = "all_succeeded"
	OutcomePartialFailure Outcome = "partial_failure"
	OutcomeNoProjects     Outcome = "no_projects"
)

// ProjectService is the registry surface the tracker needs.
type ProjectService interface {
	List(ctx context.Context) ([]project.Project, error)
	ClearCredential(ctx context.Context, id string) error
}

// Resolver picks a usable credential for a project.
type Resolver interface {
	Resolve(ctx context.Context, proj *project.Project, candidates []credential.Credential) (credential.Credential, error)
}

// Synchronizer maintains working copies and reports content changes.
type Synchronizer interface {
	Sync(ctx context.Context, proj *project.Project, cred credential.Credential) (syncer.Result, error)
	Path(projectID string) string
}

// Extractor measures a working copy.
type Extractor interface {
	Extract(ctx context.Context, dir string) (extract.Metrics, error)
}

// MetricService is the series surface the tracker needs.
type MetricService interface {
	Append(ctx context.Context, rec *metric.Record) error
	Latest(ctx context.Context, projectID string) (*metric.Record, error)
}

// ProjectResult reports one project's run within a cycle.
type ProjectResult struct {
	ProjectID string         `json:"project_id"`
	Name      string         `json:"name"`
	Changed   bool           `json:"changed"`
	Record    *metric.Record `json:"record,omitempty"`
	Stage     string         `json:"stage,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// CycleReport describes a completed cycle.
type CycleReport struct {
	CycleID  string          `json:"cycle_id"`
	Started  time.Time       `json:"started"`
	Finished time.Time       `json:"finished"`
	Outcome  Outcome         `json:"outcome"`
	Results  []ProjectResult `json:"results"`
}

// Tracker runs the resolve, sync, extract, record pipeline across the
// registry. Projects are fully isolated: one project's failure never stops
// the others.
type Tracker struct {
	projects    ProjectService
	resolver    Resolver
	syncer      Synchronizer
	extractor   Extractor
	metrics     MetricService
	credentials []credential.Credential
	logger      *slog.Logger

	now     func() time.Time
	running atomic.Bool

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a tracker over the given ordered credential candidates.
func New(projects ProjectService, resolver Resolver, syncSvc Synchronizer, extractor Extractor, metrics MetricService, credentials []credential.Credential, logger *slog.Logger) *Tracker {
	return &Tracker{
		projects:    projects,
		resolver:    resolver,
		syncer:      syncSvc,
		extractor:   extractor,
		metrics:     metrics,
		credentials: credentials,
		logger:      logger,
		now:         time.Now,
		locks:       make(map[string]*sync.Mutex),
	}
}

// RunCycle executes one extraction cycle over every registered project. At
// most one cycle runs at a time; a concurrent call returns
// ErrCycleInProgress.
func (t *Tracker) RunCycle(ctx context.Context) (*CycleReport, error) {
	if !t.running.CompareAndSwap(false, true) {
		return nil, ErrCycleInProgress
	}
	defer t.running.Store(false)

	report := &CycleReport{
		CycleID: uuid.NewString(),
		Started: t.now().UTC(),
	}
	logger := t.logger.With("cycle", report.CycleID)

	projects, err := t.projects.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	if len(projects) == 0 {
		report.Finished = t.now().UTC()
		report.Outcome = OutcomeNoProjects
		logger.Info("cycle finished", "outcome", report.Outcome)
		return report, nil
	}

	report.Results = make([]ProjectResult, len(projects))
	var wg sync.WaitGroup
	for i := range projects {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			report.Results[i] = t.runProject(ctx, logger, &projects[i], report.CycleID)
		}(i)
	}
	wg.Wait()

	report.Finished = t.now().UTC()
	report.Outcome = OutcomeAllSucceeded
	for _, res := range report.Results {
		if res.Error != "" {
			report.Outcome = OutcomePartialFailure
			break
		}
	}
	logger.Info("cycle finished",
		"outcome", report.Outcome,
		"projects", len(report.Results),
		"duration", report.Finished.Sub(report.Started))
	return report, nil
}

func (t *Tracker) runProject(ctx context.Context, logger *slog.Logger, proj *project.Project, cycleID string) ProjectResult {
	lock := t.projectLock(proj.ID)
	lock.Lock()
	defer lock.Unlock()

	result := ProjectResult{ProjectID: proj.ID, Name: proj.Name}
	logger = logger.With("project", proj.ID)

	cred, err := t.resolver.Resolve(ctx, proj, t.credentials)
	if err != nil {
		logger.Error("credential resolution failed", "error", err)
		result.Stage, result.Error = "resolve", err.Error()
		return result
	}

	syncResult, err := t.syncer.Sync(ctx, proj, cred)
	if err != nil {
		logger.Error("sync failed", "error", err)
		if errors.Is(err, syncer.ErrPermanent) {
			// The remembered credential no longer works; drop it so the next
			// cycle re-resolves from the full candidate list.
			if clearErr := t.projects.ClearCredential(ctx, proj.ID); clearErr != nil {
				logger.Error("clearing credential failed", "error", clearErr)
			}
		}
		result.Stage, result.Error = "sync", err.Error()
		return result
	}
	result.Changed = syncResult.Changed

	rec, err := t.buildRecord(ctx, logger, proj, syncResult, cycleID)
	if err != nil {
		result.Stage, result.Error = "extract", err.Error()
		return result
	}

	if err := t.metrics.Append(ctx, rec); err != nil {
		logger.Error("recording failed", "error", err)
		result.Stage, result.Error = "record", err.Error()
		return result
	}

	result.Record = rec
	logger.Info("project measured",
		"changed", syncResult.Changed,
		"words", countValue(rec.Words),
		"pages", countValue(rec.Pages))
	return result
}

// buildRecord produces the record to append. When content is unchanged the
// previous record's values are carried forward under a fresh timestamp and
// the extractor is not invoked at all.
func (t *Tracker) buildRecord(ctx context.Context, logger *slog.Logger, proj *project.Project, syncResult syncer.Result, cycleID string) (*metric.Record, error) {
	previous, err := t.metrics.Latest(ctx, proj.ID)
	if err != nil && !errors.Is(err, metric.ErrNoRecords) {
		logger.Error("loading previous record failed", "error", err)
		return nil, err
	}

	rec := &metric.Record{
		ProjectID:   proj.ID,
		RecordedAt:  t.timestamp(previous),
		Fingerprint: syncResult.Fingerprint,
		CycleID:     cycleID,
	}

	if !syncResult.Changed && previous != nil {
		rec.Words = previous.Words
		rec.Pages = previous.Pages
		return rec, nil
	}

	metrics, err := t.extractor.Extract(ctx, t.syncer.Path(proj.ID))
	if err != nil {
		logger.Error("extraction failed", "error", err)
		return nil, err
	}
	words := metrics.Words
	rec.Words = &words
	rec.Pages = metrics.Pages
	return rec, nil
}

func (t *Tracker) timestamp(previous *metric.Record) time.Time {
	ts := t.now().UTC()
	if previous != nil && !previous.RecordedAt.Before(ts) {
		ts = previous.RecordedAt.Add(timestampEpsilon)
	}
	return ts
}

func (t *Tracker) projectLock(id string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	lock, ok := t.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[id] = lock
	}
	return lock
}

func countValue(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
