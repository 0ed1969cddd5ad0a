package clock

import "time"

// Clock abstracts time so the rate limiter and retention sweeper can be
// exercised with a virtual clock in tests instead of time.Now().
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// Since returns the duration elapsed since t.
	Since(t time.Time) time.Duration
}

// Real delegates to the standard time package.
type Real struct{}

// NewReal returns a Clock backed by the system clock.
func NewReal() *Real {
	return &Real{}
}

func (Real) Now() time.Time {
	return time.Now()
}

func (Real) Since(t time.Time) time.Duration {
	return time.Since(t)
}
