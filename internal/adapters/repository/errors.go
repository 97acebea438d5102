package repository

import "errors"

// Sentinel kinds for source errors.
var (
	ErrInvalidQuery      = errors.New("invalid athlete query")
	ErrInvalidIdentifier = errors.New("invalid sql identifier")
	ErrQuery             = errors.New("athlete query failed")
	ErrUnknownDialect    = errors.New("unknown sql dialect")
	ErrClosed            = errors.New("source closed")
)
