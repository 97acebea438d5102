package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	jobqueue "github.com/okian/ranksum/internal/adapters/mq/queue"
	repository "github.com/okian/ranksum/internal/adapters/repository"
	"github.com/okian/ranksum/internal/domain/metric"
	"github.com/okian/ranksum/internal/domain/model"
	"github.com/okian/ranksum/internal/domain/scoring"
	"github.com/okian/ranksum/internal/domain/types"
	"github.com/okian/ranksum/pkg/logger"
	"github.com/okian/ranksum/pkg/metrics"
)

// Request asks for one leaderboard.
type Request = model.BoardRequest

// SummaryRequest asks for aggregates over the top of a leaderboard.
type SummaryRequest struct {
	Request
	// Top is the number of leading athletes to aggregate over.
	Top int
	// Func is MAX, MIN or AVG.
	Func string
}

// computed is a scored leaderboard with its inputs.
type computed struct {
	rows        []model.Row
	metrics     []metric.Metric
	descriptive []string
	result      scoring.Result
}

// Leaderboard computes the rank-sum leaderboard for req.
func (s *Service) Leaderboard(ctx context.Context, req Request) (types.Board, error) {
	start := time.Now()
	board, err := s.leaderboard(ctx, req)
	metrics.RecordLeaderboard(outcome(err), float64(time.Since(start).Milliseconds()), board.Total)
	if err != nil {
		s.logger.Debug(ctx, "leaderboard failed",
			logger.Int64("division", req.Division),
			logger.Int64("region", req.Region),
			logger.Error(err),
		)
		return types.Board{}, err
	}
	s.logger.Debug(ctx, "leaderboard computed",
		logger.Int64("division", req.Division),
		logger.Int64("region", req.Region),
		logger.Int("athletes", board.Total),
		logger.Int("excluded", board.Excluded),
		logger.Duration("took", time.Since(start)),
	)
	return board, nil
}

func (s *Service) leaderboard(ctx context.Context, req Request) (types.Board, error) {
	if err := s.validateLimit(req.Limit); err != nil {
		return types.Board{}, err
	}
	c, err := s.compute(ctx, req)
	if err != nil {
		return types.Board{}, err
	}

	rows := c.result.Rows
	total := len(rows)
	if req.Limit > 0 && req.Limit < total {
		rows = rows[:req.Limit]
	}

	entries := make([]types.Entry, len(rows))
	for i, r := range rows {
		fields := r.Clone()
		points, _ := fields[scoring.PointsField].(int)
		delete(fields, scoring.PointsField)
		entries[i] = types.Entry{Place: i + 1, Points: points, Fields: fields}
	}

	info := make([]types.MetricInfo, len(c.metrics))
	for i, m := range c.metrics {
		info[i] = types.MetricInfo{Column: m.Column, Kind: m.Kind.String(), Ascending: m.Ascending()}
	}

	return types.Board{
		Division:    req.Division,
		Region:      req.Region,
		Metrics:     info,
		Descriptive: c.descriptive,
		Excluded:    c.result.Excluded,
		Total:       total,
		Entries:     entries,
	}, nil
}

// compute validates req, queries the source and scores the rows.
func (s *Service) compute(ctx context.Context, req Request) (computed, error) {
	if req.Division <= 0 {
		return computed{}, fmt.Errorf("%w: division must be positive, got %d", ErrInvalidRequest, req.Division)
	}
	if req.Region < 0 {
		return computed{}, fmt.Errorf("%w: region must not be negative, got %d", ErrInvalidRequest, req.Region)
	}
	if s.source == nil {
		return computed{}, ErrNoSource
	}

	ms, descriptive := s.classifier.Classify(req.Columns)
	if len(ms) == 0 {
		return computed{}, fmt.Errorf("%w: no scoring metric among columns %v", ErrInvalidRequest, req.Columns)
	}
	if !slices.Contains(descriptive, s.idColumn) {
		return computed{}, fmt.Errorf("%w: columns must include the identifier %q", ErrInvalidRequest, s.idColumn)
	}
	for _, reserved := range []string{types.PlaceField, types.PointsField} {
		if slices.Contains(descriptive, reserved) {
			return computed{}, fmt.Errorf("%w: column %q is reserved for the leaderboard response", ErrInvalidRequest, reserved)
		}
	}

	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}
	rows, err := s.source.Athletes(ctx, repository.Query{
		Division: req.Division,
		Region:   req.Region,
		Columns:  descriptive,
		Metrics:  metric.Columns(ms),
	})
	switch {
	case errors.Is(err, repository.ErrInvalidQuery):
		return computed{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	case err != nil:
		return computed{}, fmt.Errorf("%w: %w", ErrSource, err)
	}

	res, err := s.aggregator.Compute(rows, ms, descriptive)
	if err != nil {
		return computed{}, err
	}
	metrics.RecordAthletesExcluded(res.Excluded)
	return computed{rows: rows, metrics: ms, descriptive: descriptive, result: res}, nil
}

func (s *Service) validateLimit(limit int) error {
	if limit < 0 || limit > s.maxLimit {
		return fmt.Errorf("%w: limit must be within [0,%d], got %d", ErrInvalidRequest, s.maxLimit, limit)
	}
	return nil
}

// Summary aggregates each metric over the top req.Top athletes of the full
// leaderboard. req.Limit is validated but does not shrink the population.
func (s *Service) Summary(ctx context.Context, req SummaryRequest) (types.Summary, error) {
	fn, err := scoring.ParseFunc(req.Func)
	if err != nil {
		return types.Summary{}, err
	}
	if req.Top < 1 || req.Top > s.maxLimit {
		return types.Summary{}, fmt.Errorf("%w: top must be within [1,%d], got %d", ErrInvalidRequest, s.maxLimit, req.Top)
	}
	if err := s.validateLimit(req.Limit); err != nil {
		return types.Summary{}, err
	}

	c, err := s.compute(ctx, req.Request)
	if err != nil {
		return types.Summary{}, err
	}
	values, err := s.aggregator.Summarize(c.result.Rows, c.rows, c.metrics, req.Top, fn)
	if err != nil {
		return types.Summary{}, err
	}
	metrics.RecordSummary()

	out := types.Summary{
		Division: req.Division,
		Region:   req.Region,
		Func:     string(fn),
		Top:      min(req.Top, len(c.result.Rows)),
		Values:   make([]types.SummaryValue, len(values)),
	}
	for i, v := range values {
		out.Values[i] = types.SummaryValue{Label: v.Label, Metric: v.Metric, Value: v.Value}
	}
	return out, nil
}

// Batch computes several leaderboards concurrently on the worker pool.
// Results are returned in request order; per-request failures are reported in
// the result, not as the returned error.
func (s *Service) Batch(ctx context.Context, reqs []Request) ([]types.BatchResult, error) {
	s.mu.RLock()
	started, q := s.started, s.jobQueue
	s.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrInvalidRequest)
	}
	if len(reqs) > q.Cap() {
		return nil, fmt.Errorf("%w: batch of %d exceeds queue capacity %d", ErrInvalidRequest, len(reqs), q.Cap())
	}

	batchID := uuid.NewString()
	results := make([]types.BatchResult, len(reqs))
	reply := make(chan jobqueue.Result, len(reqs))
	pending := 0
	for i, req := range reqs {
		results[i].Index = i
		job := jobqueue.NewJob(ctx, fmt.Sprintf("%s-%d", batchID, i), i, req, reply)
		if !q.Enqueue(ctx, job) {
			results[i].Error = errorBody(fmt.Errorf("%w: request %d not queued", ErrBackpressure, i))
			continue
		}
		pending++
	}

	for ; pending > 0; pending-- {
		select {
		case r := <-reply:
			if r.Err != nil {
				results[r.Index].Error = errorBody(r.Err)
				continue
			}
			board := r.Board
			results[r.Index].Board = &board
		case <-ctx.Done():
			for i := range results {
				if results[i].Board == nil && results[i].Error == nil {
					results[i].Error = errorBody(ctx.Err())
				}
			}
			return results, nil
		}
	}

	s.logger.Debug(ctx, "batch computed", logger.String("batchID", batchID), logger.Int("requests", len(reqs)))
	return results, nil
}

func errorBody(err error) *types.Error {
	return &types.Error{Code: ErrorCode(err), Message: err.Error()}
}

func outcome(err error) string {
	if err == nil {
		return metrics.OutcomeOK
	}
	switch ErrorCode(err) {
	case CodeInvalidRequest:
		return metrics.OutcomeInvalid
	case CodeCanceled:
		return metrics.OutcomeCanceled
	default:
		return metrics.OutcomeSourceError
	}
}
