package service

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// pacer spaces item-level remote calls by a fixed delay. The first call is
// never delayed.
type pacer struct {
	limiter *rate.Limiter
}

func newPacer(delay time.Duration) *pacer {
	if delay <= 0 {
		return &pacer{}
	}
	return &pacer{limiter: rate.NewLimiter(rate.Every(delay), 1)}
}

// Wait blocks until the next call may proceed or ctx is done.
func (p *pacer) Wait(ctx context.Context) error {
	if p == nil || p.limiter == nil {
		return ctx.Err()
	}
	return p.limiter.Wait(ctx)
}
