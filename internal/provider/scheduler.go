package provider

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Scheduler paces outbound provider calls. One Scheduler is shared by every fetch that
// counts against the same API key.
type Scheduler struct {
	limiter *rate.Limiter
}

func NewScheduler(requestsPerMinute int) *Scheduler {
	if requestsPerMinute <= 0 {
		return &Scheduler{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Scheduler{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)}
}

// Wait blocks until the next request slot or until ctx is done.
func (s *Scheduler) Wait(ctx context.Context) error {
	if s == nil || s.limiter == nil {
		return nil
	}
	return s.limiter.Wait(ctx)
}
