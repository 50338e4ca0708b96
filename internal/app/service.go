// Package service wires the feature pipeline together: timelines, the feature
// worker pool, the sharded store, alignment and the walk-forward backtest.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/okian/formcast/internal/adapters/mq/queue"
	"github.com/okian/formcast/internal/adapters/mq/worker"
	"github.com/okian/formcast/internal/adapters/repository"
	"github.com/okian/formcast/internal/config"
	"github.com/okian/formcast/internal/domain/align"
	"github.com/okian/formcast/internal/domain/backtest"
	"github.com/okian/formcast/internal/domain/classifier"
	"github.com/okian/formcast/internal/domain/features"
	"github.com/okian/formcast/internal/domain/model"
	"github.com/okian/formcast/internal/domain/selection"
	"github.com/okian/formcast/internal/domain/timeline"
	"github.com/okian/formcast/internal/domain/types"
	"github.com/okian/formcast/pkg/logger"
	"github.com/okian/formcast/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize  = 1024
	defaultShardCount = 8
)

// ErrNoResult is returned by read accessors before the first successful run.
var ErrNoResult = types.ErrNoResult

// Result is the outcome of one pipeline run.
type Result struct {
	Teams int
	Games int

	// Rows are the aligned matchup rows handed to the backtest, ordered by (date, team).
	Rows []model.MatchupRow

	// Integrity lists rows dropped by the opponent join.
	Integrity []*model.IntegrityError

	// NoSuccessor counts rows dropped in next-game join mode.
	NoSuccessor int

	// IngestDropped counts records rejected before the run, e.g. malformed CSV rows.
	IngestDropped int

	Report types.Report

	Duration time.Duration
}

// Service runs the feature pipeline and keeps the latest result for readers.
type Service struct {
	mu sync.RWMutex

	// Core components
	generator *features.Generator
	aligner   *align.Aligner
	engine    *backtest.Engine

	// Configuration
	workerCount int
	queueSize   int
	shardCount  int

	// State of the last successful run
	store  *repository.ShardedStore
	last   *Result
	runs   int
	failed int

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of feature workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithShardCount sets the number of feature store shards.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithGenerator replaces the default feature generator.
func WithGenerator(g *features.Generator) Option {
	return func(s *Service) {
		if g != nil {
			s.generator = g
		}
	}
}

// WithAligner replaces the default aligner.
func WithAligner(a *align.Aligner) Option {
	return func(s *Service) {
		if a != nil {
			s.aligner = a
		}
	}
}

// WithEngine replaces the default backtest engine.
func WithEngine(e *backtest.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Components not supplied through options use their defaults:
// strictly-prior features, same-game joins and a season walk-forward with k-best
// selection and a ridge classifier.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   defaultQueueSize,
		shardCount:  defaultShardCount,
		logger:      logger.Get().Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.generator == nil {
		g, err := features.NewGenerator()
		if err != nil {
			return nil, err
		}
		s.generator = g
	}
	if s.aligner == nil {
		s.aligner = align.NewAligner()
	}
	if s.engine == nil {
		e, err := backtest.NewEngine(
			backtest.SeasonSplitter{Start: backtest.DefaultSeasonStart, Step: backtest.DefaultSeasonStep},
			selection.Default(selection.DefaultK),
			classifier.RidgeFactory(classifier.DefaultAlpha),
		)
		if err != nil {
			return nil, err
		}
		s.engine = e
	}
	return s, nil
}

// NewFromConfig builds every component from cfg.
func NewFromConfig(cfg *config.Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	boundary, err := features.ParseWindowBoundary(cfg.WindowBoundary)
	if err != nil {
		return nil, err
	}
	gen, err := features.NewGenerator(
		features.WithRollingWindows(cfg.RollingWindows...),
		features.WithFormWindows(cfg.FormWindows...),
		features.WithWindowBoundary(boundary),
		features.WithSeasonLength(cfg.SeasonLength),
		features.WithDefaultRestDays(cfg.DefaultRestDays),
	)
	if err != nil {
		return nil, err
	}

	scope, err := align.ParseLabelScope(cfg.LabelScope)
	if err != nil {
		return nil, err
	}
	join, err := align.ParseJoinMode(cfg.JoinMode)
	if err != nil {
		return nil, err
	}

	splitter, err := backtest.NewSplitter(cfg.SplitPolicy, cfg.SeasonStart, cfg.SeasonStep, cfg.FoldCount)
	if err != nil {
		return nil, err
	}
	engine, err := backtest.NewEngine(splitter,
		selection.Default(cfg.TopK),
		classifier.RidgeFactory(cfg.RidgeAlpha),
		backtest.WithParallelism(cfg.FitParallelism),
	)
	if err != nil {
		return nil, err
	}

	return New(
		WithWorkerCount(cfg.WorkerCount),
		WithQueueSize(cfg.QueueSize),
		WithShardCount(cfg.ShardCount),
		WithGenerator(gen),
		WithAligner(align.NewAligner(align.WithLabelScope(scope), align.WithJoinMode(join))),
		WithEngine(engine),
	)
}

// RunOption configures a single Run.
type RunOption func(*runSettings)

type runSettings struct {
	ingestDropped int
}

// WithIngestDropped reports records the loader already rejected so the backtest
// report counts them among integrity exclusions.
func WithIngestDropped(n int) RunOption {
	return func(rs *runSettings) {
		if n > 0 {
			rs.ingestDropped = n
		}
	}
}

// Run executes the whole pipeline over records. The returned Result is also kept
// for readers. When the backtest scores no iteration the partial Result is
// returned together with backtest.ErrNoScoredIterations.
func (s *Service) Run(ctx context.Context, records []model.GameRecord, opts ...RunOption) (*Result, error) {
	start := time.Now()
	var rs runSettings
	for _, opt := range opts {
		opt(&rs)
	}

	timelines, err := timeline.Build(ctx, records)
	if err != nil {
		s.markFailed()
		return nil, fmt.Errorf("build timelines: %w", err)
	}
	teams := timeline.Teams(timelines)
	s.logger.Info(ctx, "timelines built",
		logger.Int("teams", len(teams)),
		logger.Int("games", len(records)),
	)

	store, err := s.generate(ctx, timelines, teams)
	if err != nil {
		s.markFailed()
		return nil, err
	}

	aligned, err := s.aligner.Align(ctx, store)
	if err != nil {
		s.markFailed()
		return nil, fmt.Errorf("align: %w", err)
	}

	report, err := s.engine.Run(ctx, backtest.Input{
		Rows:              aligned.Rows,
		ExcludedIntegrity: len(aligned.Integrity) + rs.ingestDropped,
	})
	if err != nil && !errors.Is(err, backtest.ErrNoScoredIterations) {
		s.markFailed()
		return nil, fmt.Errorf("backtest: %w", err)
	}

	res := &Result{
		Teams:         len(teams),
		Games:         len(records),
		Rows:          aligned.Rows,
		Integrity:     aligned.Integrity,
		NoSuccessor:   aligned.NoSuccessor,
		IngestDropped: rs.ingestDropped,
		Report:        report,
		Duration:      time.Since(start),
	}

	s.mu.Lock()
	s.store = store
	s.last = res
	s.runs++
	s.mu.Unlock()

	s.logger.Info(ctx, "pipeline finished",
		logger.Int("rows", len(res.Rows)),
		logger.Int("integrity_dropped", len(res.Integrity)),
		logger.Float64("accuracy", report.OverallAccuracy),
		logger.Int("predictions", report.ValidPredictions),
		logger.Duration("took", res.Duration),
	)
	return res, err
}

// generate fans timelines out to the worker pool and waits for every team.
func (s *Service) generate(ctx context.Context, timelines map[string]model.TeamTimeline, teams []string) (*repository.ShardedStore, error) {
	store := repository.NewShardedStore(repository.WithShardCount(s.shardCount))
	q := queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))

	var (
		mu       sync.Mutex
		failures []error
	)
	pool := worker.NewPool(s.workerCount, q, s.generator, store,
		worker.WithLogger(s.logger),
		worker.WithReporter(func(o worker.Outcome) {
			if o.Err == nil {
				return
			}
			mu.Lock()
			failures = append(failures, fmt.Errorf("team %s: %w", o.Team, o.Err))
			mu.Unlock()
		}),
	)
	pool.Start(ctx)

	var enqueueErr error
	for _, team := range teams {
		if err := q.EnqueueWait(ctx, queue.Job{Timeline: timelines[team]}); err != nil {
			enqueueErr = fmt.Errorf("enqueue team %s: %w", team, err)
			break
		}
	}
	if err := pool.Shutdown(ctx); err != nil {
		return nil, fmt.Errorf("feature workers: %w", err)
	}
	if enqueueErr != nil {
		return nil, enqueueErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(failures) > 0 {
		sort.Slice(failures, func(i, j int) bool { return failures[i].Error() < failures[j].Error() })
		return nil, fmt.Errorf("feature generation: %w", errors.Join(failures...))
	}

	count := store.Count(ctx)
	metrics.UpdateStoreRecordsTotal(count)
	s.logger.Info(ctx, "features generated",
		logger.Int("entries", count),
		logger.Int("workers", pool.Size()),
	)
	return store, nil
}

func (s *Service) markFailed() {
	s.mu.Lock()
	s.failed++
	s.mu.Unlock()
}

// LastResult returns the result of the latest successful run.
func (s *Service) LastResult() (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil, ErrNoResult
	}
	return s.last, nil
}

// Report returns the backtest report of the latest run.
func (s *Service) Report(_ context.Context) (types.Report, error) {
	res, err := s.LastResult()
	if err != nil {
		return types.Report{}, err
	}
	return res.Report, nil
}

// Matchups returns aligned rows of the latest run, optionally filtered by team.
// The most recent rows are kept when limit is positive.
func (s *Service) Matchups(_ context.Context, team string, limit int) ([]model.MatchupRow, error) {
	res, err := s.LastResult()
	if err != nil {
		return nil, err
	}

	var rows []model.MatchupRow
	if team == "" {
		rows = res.Rows
	} else {
		for _, r := range res.Rows {
			if r.Game.Team == team {
				rows = append(rows, r)
			}
		}
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	out := make([]model.MatchupRow, len(rows))
	copy(out, rows)
	return out, nil
}

// Features returns the stored entry for team on date from the latest run.
func (s *Service) Features(ctx context.Context, team string, date time.Time) (repository.Entry, error) {
	s.mu.RLock()
	store := s.store
	s.mu.RUnlock()
	if store == nil {
		return repository.Entry{}, ErrNoResult
	}
	return store.Get(ctx, team, date)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"shardCount":  s.shardCount,
		"runs":        s.runs,
		"failedRuns":  s.failed,
	}

	if s.last != nil {
		stats["teams"] = s.last.Teams
		stats["games"] = s.last.Games
		stats["rows"] = len(s.last.Rows)
		stats["integrityDropped"] = len(s.last.Integrity)
		stats["noSuccessor"] = s.last.NoSuccessor
		stats["overallAccuracy"] = s.last.Report.OverallAccuracy
		stats["validPredictions"] = s.last.Report.ValidPredictions
		stats["lastRunMs"] = s.last.Duration.Milliseconds()
	}
	if s.store != nil {
		stats["storedEntries"] = s.store.Count(context.Background())
	}

	return stats
}
