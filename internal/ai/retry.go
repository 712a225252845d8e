package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spigell/cv-matcher/internal/utils"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = time.Second
	defaultMaxDelay    = 30 * time.Second
)

// RetryPolicy is the bounded exponential backoff applied to retryable
// provider failures.
type RetryPolicy struct {
	MaxAttempts int           `mapstructure:"max-attempts"`
	BaseDelay   time.Duration `mapstructure:"base-delay"`
	// MaxDelay caps a single wait. A rate-limit response advertising a longer
	// delay is treated as quota exhaustion instead of being waited out.
	MaxDelay time.Duration `mapstructure:"max-delay"`
}

// DefaultRetryPolicy returns 3 attempts, 1s base delay doubling up to 30s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: defaultMaxAttempts,
		BaseDelay:   defaultBaseDelay,
		MaxDelay:    defaultMaxDelay,
	}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultMaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = defaultBaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = defaultMaxDelay
	}
	return p
}

// Delay returns the wait before the next attempt after the given (1-based)
// failed attempt. An advertised delay wins over the backoff when longer.
func (p RetryPolicy) Delay(attempt int, advertised time.Duration) time.Duration {
	p = p.withDefaults()
	if attempt < 1 {
		attempt = 1
	}

	delay := p.BaseDelay
	for i := 1; i < attempt && delay < p.MaxDelay; i++ {
		delay *= 2
	}

	if advertised > delay {
		delay = advertised
	}

	return min(delay, p.MaxDelay)
}

// Retrier runs provider calls under a RetryPolicy.
type Retrier struct {
	Policy   RetryPolicy
	Classify Classifier
	// Sleep is used for backoff waits; nil means time.Sleep.
	Sleep func(time.Duration)
	// OnRetry is called before each wait.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// Do calls fn until it succeeds, fails terminally, runs out of attempts or
// ctx ends. Returned errors wrap one of ErrRateLimited, ErrQuotaExceeded or
// ErrProvider together with the last provider error; context errors are
// returned as they are.
func (r Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	policy := r.Policy.withDefaults()
	classify := r.Classify
	if classify == nil {
		classify = func(error) Classification { return Classification{Kind: ErrProvider} }
	}

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		class := classify(err)
		if class.Kind == nil {
			class.Kind = ErrProvider
		}

		if errors.Is(class.Kind, ErrRateLimited) && class.RetryAfter > policy.MaxDelay {
			return fmt.Errorf("%w: retry delay %s exceeds %s: %w", ErrQuotaExceeded, class.RetryAfter, policy.MaxDelay, err)
		}

		if !class.Retryable {
			return fmt.Errorf("%w: %w", class.Kind, err)
		}

		lastErr = fmt.Errorf("%w after %d attempt(s): %w", class.Kind, attempt, err)
		if attempt == policy.MaxAttempts {
			break
		}

		delay := policy.Delay(attempt, class.RetryAfter)
		if r.OnRetry != nil {
			r.OnRetry(attempt, delay, err)
		}

		if err := utils.WaitWith(ctx, delay, r.Sleep); err != nil {
			return err
		}
	}

	return lastErr
}
