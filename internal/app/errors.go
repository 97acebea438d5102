package service

import (
	"context"
	"errors"

	"github.com/okian/ranksum/internal/adapters/mq/queue"
	"github.com/okian/ranksum/internal/domain/scoring"
)

// Sentinel kinds for service errors.
var (
	// ErrInvalidRequest marks every caller error; it is the scoring sentinel so
	// validation failures from either layer match the same check.
	ErrInvalidRequest = scoring.ErrInvalidRequest
	ErrBackpressure   = queue.ErrBackpressure
	ErrSource         = errors.New("athlete source failed")
	ErrNoSource       = errors.New("no athlete source configured")
	ErrNotStarted     = errors.New("service not started")
)

// Error codes reported to clients.
const (
	CodeInvalidRequest = "invalid_request"
	CodeBackpressure   = "backpressure"
	CodeSourceError    = "source_error"
	CodeCanceled       = "canceled"
	CodeUnavailable    = "unavailable"
	CodeInternal       = "internal_error"
)

// ErrorCode maps err to its client error code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return CodeInvalidRequest
	case errors.Is(err, ErrBackpressure):
		return CodeBackpressure
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeCanceled
	case errors.Is(err, ErrSource):
		return CodeSourceError
	case errors.Is(err, ErrNotStarted), errors.Is(err, ErrNoSource):
		return CodeUnavailable
	default:
		return CodeInternal
	}
}
