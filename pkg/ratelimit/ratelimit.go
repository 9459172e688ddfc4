// Package ratelimit implements the per-domain sliding-window admission
// control consulted before a source fetch is dispatched.
package ratelimit

import (
	"sync"
	"time"

	"github.com/prayag001/NewsNexus/pkg/domain"
)

// Limiter admits or rejects requests per canonical domain using a sliding
// window of request timestamps. Each domain's window is independent; there
// is no global limit.
type Limiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	rings  map[string][]time.Time
}

// New builds a Limiter admitting up to limit requests per domain within
// window.
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:  limit,
		window: window,
		rings:  make(map[string][]time.Time),
	}
}

// Allow reports whether a request for domain is admitted at time now,
// recording the admission if so. Returns a RateLimited error on rejection.
func (l *Limiter) Allow(dom string, now time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	ring := l.rings[dom]
	cutoff := now.Add(-l.window)
	kept := ring[:0]
	for _, ts := range ring {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= l.limit {
		l.rings[dom] = kept
		return domain.NewError(domain.RateLimited, "rate limit exceeded for domain "+dom)
	}

	l.rings[dom] = append(kept, now)
	return nil
}

// Reset clears the window for a single domain. Used by tests and by
// operator tooling; never called on the request path.
func (l *Limiter) Reset(dom string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.rings, dom)
}
