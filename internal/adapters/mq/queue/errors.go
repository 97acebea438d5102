package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrStopped      = errors.New("worker stopped")
	ErrBackpressure = errors.New("job queue full")
)
