package github

import "errors"

// Sentinel kinds for GitHub adapter errors. These allow errors.Is from
// callers without coupling to response internals.
var (
	ErrNoTokens     = errors.New("at least one personal access token is required")
	ErrUserNotFound = errors.New("user not found")
	ErrRateLimited  = errors.New("rate limit exceeded")
	ErrGraphQL      = errors.New("graphql query failed")
	ErrParse        = errors.New("failed to parse response")
)
