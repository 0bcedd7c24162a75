package config

import "errors"

// Sentinel kinds for configuration errors. Load wraps provider failures in
// ErrLoadConfig and validation failures in ErrInvalidConfig so callers can
// tell a broken file apart from a bad value.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
