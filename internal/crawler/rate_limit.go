package crawler

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// newThrottle builds the shared probe limiter: one token per delay interval
// with a burst of one, so the aggregate request rate stays at 1/delay no
// matter how many workers run. A zero or negative delay disables throttling.
func newThrottle(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

// throttle blocks until the next probe may be sent. It returns the context
// error when the scan is cancelled while waiting.
func (s *scan) throttle(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	return s.limiter.Wait(ctx)
}
