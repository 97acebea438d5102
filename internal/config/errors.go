package config

import "errors"

// Load wraps ErrLoadConfig for provider and decode failures, and ErrInvalidConfig
// for values rejected by Validate or for a malformed metric_kinds list.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
