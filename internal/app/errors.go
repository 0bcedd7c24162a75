package app

import "errors"

// Sentinel kinds for service errors.
var (
	ErrAccessDenied = errors.New("access denied")
	ErrNotStarted   = errors.New("service not started")
	ErrMissingParam = errors.New("missing required parameter")
)
