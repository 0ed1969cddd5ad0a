package ratelimit

import (
	"context"
	"time"

	"github.com/gatewarden/gatewarden/internal/clock"
	"github.com/gatewarden/gatewarden/internal/logger"
)

const (
	// DefaultLimit is the per-client request budget per window.
	DefaultLimit = 1000
	// DefaultWindow is the trailing window the budget applies to.
	DefaultWindow = time.Hour

	// storeTimeout bounds every backing-store call so a slow store cannot
	// stall the request path; the fail-open policy applies after it fires.
	storeTimeout = 500 * time.Millisecond
)

// Limiter makes per-client admit/deny decisions against a sliding-window
// log. The store holds the only mutable state; the limiter itself is safe to
// share across all concurrent requests.
//
// When the store is unreachable the limiter fails open: the request is
// admitted and the error goes to the operational log. Availability of the
// proxy wins over rate-limit enforcement.
type Limiter struct {
	store  Store
	limit  int
	window time.Duration
	clock  clock.Clock
}

// NewLimiter creates a limiter with process-wide defaults applied for
// non-positive limit or window.
func NewLimiter(store Store, limit int, window time.Duration, clk clock.Clock) *Limiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if clk == nil {
		clk = clock.NewReal()
	}
	return &Limiter{store: store, limit: limit, window: window, clock: clk}
}

// Allow checks the key against the default limit and window.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	return l.AllowN(ctx, key, l.limit, l.window)
}

// AllowN checks the key against a per-call limit and window. The attempt is
// recorded even when denied, so a client hammering past its budget keeps
// its window full.
func (l *Limiter) AllowN(ctx context.Context, key string, limit int, window time.Duration) bool {
	if limit <= 0 {
		limit = l.limit
	}
	if window <= 0 {
		window = l.window
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	count, err := l.store.Slide(ctx, key, l.clock.Now(), window)
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"client_key": key,
			"error":      err.Error(),
		}).Error("rate limit store unavailable, failing open")
		return true
	}

	return count < limit
}

// CurrentCount reports the number of requests recorded for key inside the
// window without recording a new one. Diagnostic only; it never changes the
// outcome of a subsequent Allow.
func (l *Limiter) CurrentCount(ctx context.Context, key string) int {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	count, err := l.store.Count(ctx, key, l.clock.Now(), l.window)
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"client_key": key,
			"error":      err.Error(),
		}).Error("rate limit count failed")
		return 0
	}
	return count
}

// Reset clears all recorded requests for key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	return l.store.Reset(ctx, key)
}

// Limit returns the default per-window budget.
func (l *Limiter) Limit() int { return l.limit }

// Window returns the default window duration.
func (l *Limiter) Window() time.Duration { return l.window }
