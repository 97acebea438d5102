// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	jobqueue "github.com/okian/ranksum/internal/adapters/mq/queue"
	workerpool "github.com/okian/ranksum/internal/adapters/mq/worker"
	repository "github.com/okian/ranksum/internal/adapters/repository"
	"github.com/okian/ranksum/internal/domain/metric"
	"github.com/okian/ranksum/internal/domain/model"
	"github.com/okian/ranksum/internal/domain/scoring"
	"github.com/okian/ranksum/pkg/logger"
	"github.com/okian/ranksum/pkg/metrics"
)

// Default service configuration.
const (
	DefaultMaxLimit  = 1000
	DefaultQueueSize = 256
	defaultStopWait  = 10 * time.Second
)

// Service computes leaderboards from an athlete source.
type Service struct {
	mu sync.RWMutex

	// Core components
	source     repository.Source
	classifier *metric.Classifier
	aggregator *scoring.Aggregator
	jobQueue   *jobqueue.InMemoryQueue
	workerPool *workerpool.Pool

	// Configuration
	idColumn     string
	maxLimit     int
	workerCount  int
	queueSize    int
	queryTimeout time.Duration

	// State
	started bool
	cancel  context.CancelFunc

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets the athlete source.
func WithSource(source repository.Source) Option {
	return func(s *Service) {
		if source != nil {
			s.source = source
		}
	}
}

// WithClassifier sets the metric classifier.
func WithClassifier(c *metric.Classifier) Option {
	return func(s *Service) {
		if c != nil {
			s.classifier = c
		}
	}
}

// WithIDColumn sets the athlete identifier column.
func WithIDColumn(column string) Option {
	return func(s *Service) {
		if column != "" {
			s.idColumn = column
		}
	}
}

// WithMaxLimit sets the largest accepted result limit.
func WithMaxLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxLimit = limit
		}
	}
}

// WithWorkerCount sets the number of batch worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued batch jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithQueryTimeout bounds each source query.
func WithQueryTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.queryTimeout = timeout
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		classifier:  metric.NewClassifier(),
		idColumn:    model.DefaultIDColumn,
		maxLimit:    DefaultMaxLimit,
		workerCount: runtime.NumCPU() * 2, // Default to 2x CPU cores
		queueSize:   DefaultQueueSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.aggregator = scoring.NewAggregator(scoring.WithIDColumn(s.idColumn))
	return s
}

// Start starts the batch worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.source == nil {
		return ErrNoSource
	}

	s.logger.Info(ctx, "starting leaderboard service...")

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.jobQueue = jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.queueSize))
	s.workerPool = workerpool.NewPool(s.workerCount, s.jobQueue, s)
	s.workerPool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "leaderboard service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("maxLimit", s.maxLimit),
	)
	return nil
}

// Stop shuts down the worker pool and closes the source.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultStopWait)
	defer cancel()
	s.logger.Info(ctx, "stopping leaderboard service...")

	if err := s.workerPool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	s.cancel()

	if err := s.source.Close(); err != nil {
		s.logger.Warn(ctx, "closing athlete source", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "leaderboard service stopped")
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"maxLimit":    s.maxLimit,
		"idColumn":    s.idColumn,
	}

	if s.started {
		queueLen := s.jobQueue.Len(context.Background())
		stats["queueLength"] = queueLen
		stats["jobsProcessed"] = s.workerPool.Processed()
		if m, ok := s.source.(*repository.MemorySource); ok {
			stats["athletes"] = m.Len()
		}

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}
