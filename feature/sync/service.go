package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"vendsync/core/snapshot"
	"vendsync/feature/shopify"
	"vendsync/feature/sync/models"
	"vendsync/feature/vendus"
)

// ErrBusy is returned when a run is requested while another is in flight.
var ErrBusy = errors.New("a sync run is already in progress")

// ErrNoDatabase is returned by operations that need the run history store.
var ErrNoDatabase = errors.New("no database is configured")

// Run outcome values.
const (
	RunSuccess = "success"
	RunPartial = "partial"
	RunFailed  = "failed"
)

// RunReport is the full result of one reconciliation run.
type RunReport struct {
	RunID       string               `json:"runId"`
	Status      string               `json:"status"`
	TriggeredBy string               `json:"triggeredBy"`
	StartedAt   time.Time            `json:"startedAt"`
	FinishedAt  time.Time            `json:"finishedAt"`
	Scan        *snapshot.ScanResult `json:"scan,omitempty"`
	Apply       *Report              `json:"apply,omitempty"`
	Error       string               `json:"error,omitempty"`
}

// Service orchestrates a full reconciliation run: scan, snapshot, diff, apply,
// record. A mutex serialises runs; overlapping triggers get ErrBusy instead of
// queueing, because a queued run would reconcile against a stale snapshot.
type Service struct {
	cfg     Config
	scanner *vendus.Scanner
	store   snapshot.Store
	runner  *Runner
	dest    shopify.Client
	prefix  string
	db      *gorm.DB
	logger  *zap.Logger

	mu      gosync.Mutex
	running bool
	last    *RunReport
}

// NewService wires the pipeline. db may be nil; the service then falls back to
// the configured reference list and keeps no history.
func NewService(cfg Config, scanner *vendus.Scanner, store snapshot.Store, dest shopify.Client, tagPrefix string, db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{
		cfg:     cfg,
		scanner: scanner,
		store:   store,
		runner:  NewRunner(dest, tagPrefix, logger),
		dest:    dest,
		prefix:  tagPrefix,
		db:      db,
		logger:  logger,
	}
}

// Migrate prepares the history tables. No-op without a database.
func (s *Service) Migrate() error {
	if s.db == nil {
		return nil
	}
	return models.Migrate(s.db)
}

// Busy reports whether a run is currently in flight.
func (s *Service) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// LastReport returns the most recent run's report, or nil before the first run.
func (s *Service) LastReport() *RunReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Run executes one reconciliation pass. triggeredBy is recorded in the run
// history ("schedule", "manual" or "cli"). Pipeline failures are reported in
// the returned RunReport, not as an error; only an overlapping run returns one.
func (s *Service) Run(ctx context.Context, triggeredBy string) (*RunReport, error) {
	return s.runGuarded(func() *RunReport {
		return s.runPipeline(ctx, triggeredBy)
	})
}

// ApplyPlan persists scan as the new snapshot and applies exactly the given
// plan, under the same overlap guard and history recording as Run. The CLI
// uses it so the plan the operator confirmed is the plan that executes,
// without a second catalog walk in between.
func (s *Service) ApplyPlan(ctx context.Context, scan *snapshot.ScanResult, plan *Plan, triggeredBy string) (*RunReport, error) {
	return s.runGuarded(func() *RunReport {
		return s.runPlanned(ctx, scan, plan, triggeredBy)
	})
}

func (s *Service) runGuarded(pipeline func() *RunReport) (*RunReport, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.running = true
	s.mu.Unlock()

	report := pipeline()

	s.mu.Lock()
	s.running = false
	s.last = report
	s.mu.Unlock()

	s.record(report)
	return report, nil
}

// runPipeline performs the actual run behind a recover boundary so a panic in
// any stage degrades to a failed report instead of taking the process down.
func (s *Service) runPipeline(ctx context.Context, triggeredBy string) (report *RunReport) {
	report = &RunReport{
		RunID:       uuid.NewString(),
		TriggeredBy: triggeredBy,
		StartedAt:   time.Now().UTC(),
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Sync run panicked", zap.Any("panic", r))
			report.Status = RunFailed
			report.Error = fmt.Sprintf("run panicked: %v", r)
		}
		report.FinishedAt = time.Now().UTC()
	}()

	refs, err := s.References()
	if err != nil {
		return s.fail(report, fmt.Errorf("failed to load tracked references: %w", err))
	}
	if len(refs) == 0 {
		return s.fail(report, errors.New("no tracked references configured"))
	}

	scan, err := s.scanner.Scan(ctx, refs, vendus.ScanOptions{
		MaxPages:    s.cfg.MaxPages,
		Concurrency: s.cfg.Concurrency,
	})
	if err != nil {
		return s.fail(report, fmt.Errorf("catalog scan failed: %w", err))
	}
	report.Scan = scan

	// A failed snapshot write is not fatal: the scan in memory is still good
	// for this run, only the next cold start loses the cache.
	if err := s.store.Save(ctx, s.cfg.Scope, scan); err != nil {
		s.logger.Warn("Failed to persist snapshot", zap.Error(err))
	}

	tagged, err := s.dest.SearchByTagPrefix(ctx, s.prefix)
	if err != nil {
		return s.fail(report, fmt.Errorf("destination catalog lookup failed: %w", err))
	}

	s.applyPlan(ctx, report, BuildPlan(scan, tagged, s.prefix))
	return report
}

// runPlanned is the ApplyPlan pipeline: no rescan, the scan and plan are taken
// as given.
func (s *Service) runPlanned(ctx context.Context, scan *snapshot.ScanResult, plan *Plan, triggeredBy string) (report *RunReport) {
	report = &RunReport{
		RunID:       uuid.NewString(),
		TriggeredBy: triggeredBy,
		StartedAt:   time.Now().UTC(),
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Sync run panicked", zap.Any("panic", r))
			report.Status = RunFailed
			report.Error = fmt.Sprintf("run panicked: %v", r)
		}
		report.FinishedAt = time.Now().UTC()
	}()

	report.Scan = scan
	if err := s.store.Save(ctx, s.cfg.Scope, scan); err != nil {
		s.logger.Warn("Failed to persist snapshot", zap.Error(err))
	}

	s.applyPlan(ctx, report, plan)
	return report
}

// applyPlan runs the plan and closes out the report status.
func (s *Service) applyPlan(ctx context.Context, report *RunReport, plan *Plan) {
	report.Apply = s.runner.Apply(ctx, plan)

	if len(report.Apply.Errors) > 0 {
		report.Status = RunPartial
	} else {
		report.Status = RunSuccess
	}
	s.logger.Info("Sync run finished",
		zap.String("runId", report.RunID),
		zap.String("status", report.Status),
		zap.Int("found", len(report.Scan.Found)),
		zap.Int("notFound", len(report.Scan.NotFound)),
		zap.String("apply", report.Apply.Message),
	)
}

func (s *Service) fail(report *RunReport, err error) *RunReport {
	s.logger.Error("Sync run failed", zap.String("runId", report.RunID), zap.Error(err))
	report.Status = RunFailed
	report.Error = err.Error()
	return report
}

// record persists the run summary, best effort.
func (s *Service) record(report *RunReport) {
	if s.db == nil {
		return
	}
	row := &models.SyncRun{
		RunID:       report.RunID,
		Status:      report.Status,
		TriggeredBy: report.TriggeredBy,
		StartedAt:   report.StartedAt,
		FinishedAt:  report.FinishedAt,
		DurationMs:  report.FinishedAt.Sub(report.StartedAt).Milliseconds(),
		Message:     report.Error,
	}
	if report.Scan != nil {
		row.Found = len(report.Scan.Found)
		row.NotFound = len(report.Scan.NotFound)
	}
	if report.Apply != nil {
		row.Created = len(report.Apply.Created)
		row.Updated = len(report.Apply.Updated)
		row.Deleted = len(report.Apply.Deleted)
		row.ErrorCount = len(report.Apply.Errors)
		row.Message = report.Apply.Message
	}
	if err := models.RecordRun(s.db, row); err != nil {
		s.logger.Warn("Failed to record sync run", zap.Error(err))
	}
}

// References returns the tracked reference set: the database when connected,
// otherwise the comma-separated configured fallback.
func (s *Service) References() ([]string, error) {
	if s.db != nil {
		return models.ListReferences(s.db)
	}
	var refs []string
	for _, ref := range strings.Split(s.cfg.References, ",") {
		ref = strings.TrimSpace(ref)
		if ref != "" {
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

// Scan runs a catalog scan without reconciling. When refs is empty the tracked
// set is used; when save is true the snapshot is persisted.
func (s *Service) Scan(ctx context.Context, refs []string, save bool) (*snapshot.ScanResult, error) {
	if len(refs) == 0 {
		var err error
		refs, err = s.References()
		if err != nil {
			return nil, fmt.Errorf("failed to load tracked references: %w", err)
		}
	}

	scan, err := s.scanner.Scan(ctx, refs, vendus.ScanOptions{
		MaxPages:    s.cfg.MaxPages,
		Concurrency: s.cfg.Concurrency,
	})
	if err != nil {
		return nil, err
	}
	if save {
		if err := s.store.Save(ctx, s.cfg.Scope, scan); err != nil {
			return nil, fmt.Errorf("scan succeeded but snapshot write failed: %w", err)
		}
	}
	return scan, nil
}

// Plan scans the source catalog and diffs it against the destination without
// applying anything or touching the persisted snapshot. Used for dry runs.
func (s *Service) Plan(ctx context.Context) (*snapshot.ScanResult, *Plan, error) {
	refs, err := s.References()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load tracked references: %w", err)
	}
	if len(refs) == 0 {
		return nil, nil, errors.New("no tracked references configured")
	}

	scan, err := s.scanner.Scan(ctx, refs, vendus.ScanOptions{
		MaxPages:    s.cfg.MaxPages,
		Concurrency: s.cfg.Concurrency,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("catalog scan failed: %w", err)
	}

	tagged, err := s.dest.SearchByTagPrefix(ctx, s.prefix)
	if err != nil {
		return nil, nil, fmt.Errorf("destination catalog lookup failed: %w", err)
	}

	return scan, BuildPlan(scan, tagged, s.prefix), nil
}

// ReplaceReferences swaps the tracked reference set. Requires a database.
func (s *Service) ReplaceReferences(refs []string) error {
	if s.db == nil {
		return ErrNoDatabase
	}
	return models.ReplaceReferences(s.db, refs)
}

// History returns recent runs, newest first. Requires a database.
func (s *Service) History(limit int) ([]models.SyncRun, error) {
	if s.db == nil {
		return nil, ErrNoDatabase
	}
	return models.RecentRuns(s.db, limit)
}

// Snapshot loads the persisted scan result for this service's scope.
func (s *Service) Snapshot(ctx context.Context) (*snapshot.ScanResult, error) {
	return s.store.Load(ctx, s.cfg.Scope)
}

// ClearSnapshot discards the persisted scan result. The next run then starts
// from the empty snapshot, which also re-arms the no-delete safety rule.
func (s *Service) ClearSnapshot(ctx context.Context) error {
	return s.store.Delete(ctx, s.cfg.Scope)
}
