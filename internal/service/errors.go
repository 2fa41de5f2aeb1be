package service

import "errors"

var (
	// ErrSessionNotFound means the review session expired or never existed.
	ErrSessionNotFound = errors.New("review session not found")

	// ErrSessionCompleted guards mutating operations on a finished batch.
	ErrSessionCompleted = errors.New("review session already completed")

	// ErrGateway wraps persistence failures on mirrored writes. The optimistic
	// local state is kept; handlers translate this to a 502 so the client can
	// surface a transient notification and retry.
	ErrGateway = errors.New("persistence write failed")
)
