package metric

import "errors"

// Sentinel kinds for metric errors.
var (
	ErrUnknownKind = errors.New("unknown metric kind")
)
