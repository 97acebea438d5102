package scoring

import "errors"

// Sentinel kinds for scoring errors. All of them are caller-recoverable:
// fix the request and resubmit.
var (
	ErrInvalidRequest = errors.New("invalid request")
)
