package crawl

import (
	"context"

	"github.com/fwojciec/rfqtrack/fs"
	"golang.org/x/time/rate"
)

var _ fs.Limiter = (*IOLimiter)(nil)

// IOLimiter paces folder reads on slow network shares using a token bucket.
// A nil IOLimiter, or one created with a non-positive rate, never waits.
type IOLimiter struct {
	limiter *rate.Limiter
}

// NewIOLimiter creates an IOLimiter allowing perSecond folder reads per second.
// Bursting is not allowed.
func NewIOLimiter(perSecond float64) *IOLimiter {
	if perSecond <= 0 {
		return &IOLimiter{}
	}
	return &IOLimiter{limiter: rate.NewLimiter(rate.Limit(perSecond), 1)}
}

// Wait blocks until the next folder may be read.
// Returns an error if the context is canceled before the wait completes.
func (l *IOLimiter) Wait(ctx context.Context) error {
	if l == nil || l.limiter == nil {
		return ctx.Err()
	}
	return l.limiter.Wait(ctx)
}
