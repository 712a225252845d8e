package ai

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Budget is the request budget shared by every pipeline run that talks to the
// same provider. A nil Budget is unlimited.
type Budget struct {
	limiter *rate.Limiter
}

// NewBudget allows requestsPerMinute calls with the given burst. A
// non-positive rate returns nil (unlimited).
func NewBudget(requestsPerMinute, burst int) *Budget {
	if requestsPerMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}

	return &Budget{
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), burst),
	}
}

// Wait blocks until a request may be issued or ctx is done.
func (b *Budget) Wait(ctx context.Context) error {
	if b == nil || b.limiter == nil {
		return nil
	}
	return b.limiter.Wait(ctx)
}
