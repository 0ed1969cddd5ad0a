package ratelimit

import (
	"context"
	"time"
)

// Store is the keyed sliding-window state backend. Implementations must be
// safe for concurrent use, and Slide must apply its prune/count/record/expire
// steps as a single atomic unit per key: two concurrent calls for the same
// key may never both observe the same count.
type Store interface {
	// Slide prunes entries for key older than now-window, records now as a
	// new entry, refreshes the key's expiry to window from now, and returns
	// the entry count as it stood before the new entry was recorded. The
	// attempt is recorded even when the caller will deny it.
	Slide(ctx context.Context, key string, now time.Time, window time.Duration) (int, error)

	// Count prunes and returns the current entry count without recording.
	Count(ctx context.Context, key string, now time.Time, window time.Duration) (int, error)

	// Reset removes all recorded entries for key.
	Reset(ctx context.Context, key string) error
}
