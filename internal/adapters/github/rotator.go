package github

import (
	"sync"
	"time"

	"github.com/encryptedtouhid/github-readme-stats/pkg/metrics"
)

// Rotator distributes outgoing API calls across personal access tokens and
// temporarily quarantines tokens reported as rate limited. It is safe for
// concurrent use; the cursor and quarantine map sit behind one short-lived
// lock since Next is on the per-request hot path.
type Rotator struct {
	mu      sync.Mutex
	tokens  []string
	current int
	limited map[int]time.Time
}

// NewRotator creates a rotator over the given token list. The list is
// copied and never mutated afterwards; an empty list is a fatal
// configuration error.
func NewRotator(tokens []string) (*Rotator, error) {
	if len(tokens) == 0 {
		return nil, ErrNoTokens
	}
	r := &Rotator{
		tokens:  append([]string(nil), tokens...),
		limited: make(map[int]time.Time),
	}
	metrics.UpdateTokenPoolSize(len(r.tokens))
	return r, nil
}

// Next returns the next available token, skipping quarantined ones. Each
// index is visited at most once per call; when every token is quarantined
// the first token is returned anyway so the HTTP layer can surface the
// resulting rejection instead of this method blocking.
func (r *Rotator) Next() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for attempts := 0; attempts < len(r.tokens); attempts++ {
		idx := r.current
		r.current = (r.current + 1) % len(r.tokens)

		if until, ok := r.limited[idx]; ok && now.Before(until) {
			continue
		}
		return r.tokens[idx]
	}

	return r.tokens[0]
}

// MarkRateLimited quarantines token until the given time. Unknown tokens
// are ignored.
func (r *Rotator) MarkRateLimited(token string, until time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if idx := r.indexOf(token); idx >= 0 {
		r.limited[idx] = until
		metrics.UpdateTokensQuarantined(r.quarantinedLocked())
	}
}

// ClearRateLimit removes the quarantine entry for token, if present.
func (r *Rotator) ClearRateLimit(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if idx := r.indexOf(token); idx >= 0 {
		delete(r.limited, idx)
		metrics.UpdateTokensQuarantined(r.quarantinedLocked())
	}
}

// TokenCount returns the total number of configured tokens.
func (r *Rotator) TokenCount() int {
	return len(r.tokens)
}

// RateLimitedCount returns how many tokens are currently quarantined.
func (r *Rotator) RateLimitedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.quarantinedLocked()
}

// quarantinedLocked counts tokens whose quarantine is still in the future.
// Must be called with r.mu held.
func (r *Rotator) quarantinedLocked() int {
	now := time.Now().UTC()
	count := 0
	for _, until := range r.limited {
		if until.After(now) {
			count++
		}
	}
	return count
}

func (r *Rotator) indexOf(token string) int {
	for i, t := range r.tokens {
		if t == token {
			return i
		}
	}
	return -1
}
