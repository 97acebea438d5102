// Package worker runs leaderboard jobs taken from the queue.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/ranksum/internal/adapters/mq/queue"
	"github.com/okian/ranksum/internal/domain/model"
	"github.com/okian/ranksum/internal/domain/types"
	"github.com/okian/ranksum/pkg/logger"
	"github.com/okian/ranksum/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Computer builds one leaderboard.
type Computer interface {
	Leaderboard(ctx context.Context, req model.BoardRequest) (types.Board, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes jobs and replies with their results.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	computer Computer
	name     string

	shutdown chan struct{}
	done     chan struct{}

	processed atomic.Int64

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, computer Computer, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		computer: computer,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Name returns the worker name.
func (w *InMemoryWorker) Name() string { return w.name }

// Processed returns the number of jobs this worker has answered.
func (w *InMemoryWorker) Processed() int64 { return w.processed.Load() }

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
			w.process(job)
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// wait blocks until Run returns on its own, which for a closed queue means
// the jobs channel is drained. On timeout the worker is told to stop.
func (w *InMemoryWorker) wait(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return w.Shutdown(ctx)
	}
}

// process computes one job under the job's own context and replies.
func (w *InMemoryWorker) process(job queue.Job) { //nolint:gocritic // hugeParam: Job must be passed by value for channel semantics
	ctx := job.Context()
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
		w.processed.Add(1)
	}()

	if err := ctx.Err(); err != nil {
		job.Respond(queue.Result{Index: job.Index, Err: err})
		return
	}

	board, err := w.computer.Leaderboard(ctx, job.Request)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", errorType(err))
		w.logger.Debug(ctx, "job failed",
			logger.String("jobID", job.ID),
			logger.Int("index", job.Index),
			logger.Error(err),
		)
	}
	job.Respond(queue.Result{Index: job.Index, Board: board, Err: err})
}

func errorType(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "compute_error"
	}
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	logger logger.Logger
}

// NewPool creates a new worker pool. A count below one uses twice the CPU count.
func NewPool(workerCount int, q Queue, computer Computer) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(q, computer, WithName("worker-"+strconv.Itoa(i)))
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns the number of jobs answered by all workers.
func (p *Pool) Processed() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.Processed()
	}
	return n
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Shutdown closes the queue and waits for the workers to drain it. Jobs still
// queued once the workers are gone are answered with queue.ErrStopped. A queue
// that cannot be closed is abandoned and its workers are stopped directly.
func (p *Pool) Shutdown(ctx context.Context) error {
	closed := false
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		} else {
			closed = true
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var failed int
	for i, w := range p.workers {
		var err error
		if closed {
			err = w.wait(shutdownCtx)
		} else {
			err = w.Shutdown(shutdownCtx)
		}
		if err != nil {
			failed++
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	if closed {
		p.rejectLeftovers(ctx)
	}
	metrics.UpdateWorkerCount(0)
	if failed > 0 {
		return fmt.Errorf("%w: %d workers did not stop", queue.ErrStopped, failed)
	}
	return nil
}

// rejectLeftovers answers every job left in a closed queue.
func (p *Pool) rejectLeftovers(ctx context.Context) {
	var n int
	for job := range p.queue.Dequeue(context.WithoutCancel(ctx)) {
		job.Respond(queue.Result{Index: job.Index, Err: fmt.Errorf("%w: job %s not run", queue.ErrStopped, job.ID)})
		n++
	}
	if n > 0 {
		p.logger.Warn(ctx, "rejected queued jobs on shutdown", logger.Int("jobs", n))
	}
}
