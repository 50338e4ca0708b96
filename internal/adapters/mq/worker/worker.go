// Package worker runs per-team feature jobs off the queue.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/formcast/internal/adapters/mq/queue"
	"github.com/okian/formcast/internal/adapters/repository"
	"github.com/okian/formcast/internal/domain/model"
	"github.com/okian/formcast/pkg/logger"
	"github.com/okian/formcast/pkg/metrics"
)

// Default worker configuration constants.
const (
	poolShutdownTimeout = 30 * time.Second
)

// Generator computes the feature vectors of one team timeline, aligned by index.
type Generator interface {
	Generate(tl model.TeamTimeline) []model.FeatureVector
}

// Writer persists computed entries.
type Writer interface {
	Put(ctx context.Context, entries ...repository.Entry) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Outcome describes one finished job.
type Outcome struct {
	Team    string
	Entries int
	Err     error
}

// Reporter receives job outcomes.
type Reporter func(Outcome)

// Worker processes team jobs and writes entries to the store.
type Worker interface {
	// Run starts the worker loop until the queue is drained or ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker without draining the queue.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue     Queue
	generator Generator
	writer    Writer
	reporter  Reporter
	name      string

	// active is shared across a pool to track busy workers.
	active *atomic.Int64

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, generator Generator, writer Writer, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     queue,
		generator: generator,
		writer:    writer,
		reporter:  func(Outcome) {},
		name:      "worker",
		active:    &atomic.Int64{},
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			n, err := w.processJob(ctx, job)
			if err != nil {
				w.logger.Error(ctx, "feature job failed",
					logger.String("team", job.Timeline.Team()),
					logger.Error(err),
				)
			}
			w.reporter(Outcome{Team: job.Timeline.Team(), Entries: n, Err: err})
		}
	}
}

// Shutdown stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob computes and stores the features of one team.
func (w *InMemoryWorker) processJob(ctx context.Context, job queue.Job) (int, error) {
	metrics.UpdateWorkerActiveCount(int(w.active.Add(1)))
	start := time.Now()
	defer func() {
		metrics.UpdateWorkerActiveCount(int(w.active.Add(-1)))
		latency := float64(time.Since(start).Microseconds()) / 1000
		metrics.RecordWorkerProcessingLatency(latency)
		metrics.RecordFeatureLatency(latency)
	}()

	tl := job.Timeline
	vectors := w.generator.Generate(tl)
	if len(vectors) != tl.Len() {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "feature_length_mismatch")
		return 0, fmt.Errorf("team %s: %d feature vectors for %d games", tl.Team(), len(vectors), tl.Len())
	}

	entries := make([]repository.Entry, tl.Len())
	for i := range entries {
		entries[i] = repository.Entry{Record: tl.At(i), Features: vectors[i]}
	}

	if err := w.writer.Put(ctx, entries...); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "store_error")
		return 0, fmt.Errorf("store features for team %s: %w", tl.Team(), err)
	}

	metrics.RecordFeaturesGenerated(len(entries))
	metrics.RecordTeamProcessed()
	w.logger.Debug(ctx, "team features stored",
		logger.String("team", tl.Team()),
		logger.Int("games", len(entries)),
	)
	return len(entries), nil
}

// Pool manages multiple workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	logger logger.Logger
}

// NewPool creates a new worker pool. A non-positive workerCount uses runtime.NumCPU().
func NewPool(workerCount int, queue Queue, generator Generator, writer Writer, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		logger:  logger.Get().Named("worker-pool"),
	}

	active := &atomic.Int64{}
	for i := 0; i < workerCount; i++ {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		w := NewInMemoryWorker(queue, generator, writer, wopts...)
		w.active = active
		pool.workers[i] = w
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for the workers to drain it.
// Workers still busy when ctx (bounded by poolShutdownTimeout) expires are stopped.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	drainCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-drainCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			close(w.shutdown)
		}
	}

	if timedOut {
		return fmt.Errorf("worker pool drain: %w", drainCtx.Err())
	}
	return nil
}
