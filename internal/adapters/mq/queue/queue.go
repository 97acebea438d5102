// Package queue holds leaderboard jobs waiting for a worker.
//
// The in-memory implementation is a bounded buffered channel; Enqueue never
// blocks and reports false when the queue is full or closed.
package queue

import (
	"context"
	"sync"

	"github.com/okian/ranksum/internal/domain/model"
	"github.com/okian/ranksum/internal/domain/types"
	"github.com/okian/ranksum/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 1024
)

// Result is the outcome of one job.
type Result struct {
	Index int
	Board types.Board
	Err   error
}

// Job is one leaderboard computation. The result is sent on Reply exactly once.
type Job struct {
	ID      string
	Index   int
	Request model.BoardRequest
	Reply   chan<- Result

	ctx context.Context
}

// NewJob creates a job bound to ctx. Workers skip jobs whose context is done.
func NewJob(ctx context.Context, id string, index int, req model.BoardRequest, reply chan<- Result) Job { //nolint:gocritic // hugeParam: request copied into the job by value
	return Job{ID: id, Index: index, Request: req, Reply: reply, ctx: ctx}
}

// Context returns the job context, never nil.
func (j Job) Context() context.Context { //nolint:gocritic // hugeParam: Job is passed by value through channels
	if j.ctx == nil {
		return context.Background()
	}
	return j.ctx
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a job to the queue.
	// Returns false if the queue is full or closed and the job was not enqueued.
	Enqueue(ctx context.Context, j Job) bool

	// Dequeue returns a channel that will receive jobs as they become available.
	// The channel will be closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Job

	// Len returns the current number of queued jobs.
	Len(ctx context.Context) int

	// Cap returns the queue capacity.
	Cap() int

	// Close gracefully shuts down the queue.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	jobs     chan Job
	capacity int
	mu       sync.RWMutex
	closed   bool
}

var _ Queue = (*InMemoryQueue)(nil)

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan Job, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Enqueue adds a job to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, j Job) bool { //nolint:gocritic // hugeParam: Job must be passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	select {
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
	}

	select {
	case q.jobs <- j:
		metrics.RecordQueueEnqueue()
		q.report(len(q.jobs))
		return true
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel that will receive jobs as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Job {
	out := make(chan Job)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case j, ok := <-q.jobs:
				if !ok {
					return
				}
				select {
				case out <- j:
					metrics.RecordQueueDequeue()
					q.report(len(q.jobs))
				case <-ctx.Done():
					// Hand the job back to its caller rather than dropping it.
					j.Respond(Result{Index: j.Index, Err: ctx.Err()})
					return
				}
			}
		}
	}()
	return out
}

// Len returns the current number of queued jobs.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	size := len(q.jobs)
	q.report(size)
	return size
}

// Cap returns the queue capacity.
func (q *InMemoryQueue) Cap() int { return q.capacity }

func (q *InMemoryQueue) report(size int) {
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}

// Close gracefully shuts down the queue. Jobs already queued stay readable.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

// Respond delivers r on the reply channel without blocking. Submitters buffer
// the channel for every job they enqueue.
func (j Job) Respond(r Result) { //nolint:gocritic // hugeParam: Job is passed by value through channels
	if j.Reply == nil {
		return
	}
	select {
	case j.Reply <- r:
	default:
	}
}
