package ai

import (
	"errors"
	"time"
)

var (
	// ErrRateLimited is a transient throttling failure. It is retried inside
	// the provider and surfaces only once the retry policy is exhausted.
	ErrRateLimited = errors.New("ai provider rate limited")
	// ErrQuotaExceeded is terminal: the account has run out of quota or credits.
	ErrQuotaExceeded = errors.New("ai provider quota exceeded")
	// ErrProvider covers every other provider failure.
	ErrProvider = errors.New("ai provider error")
)

// Classification tells the retry loop how to treat a provider error.
type Classification struct {
	// Kind is one of ErrRateLimited, ErrQuotaExceeded or ErrProvider.
	Kind      error
	Retryable bool
	// RetryAfter is the delay advertised by the provider, zero when unknown.
	RetryAfter time.Duration
}

// Classifier maps a raw provider error onto a Classification.
type Classifier func(err error) Classification

// IsRetryable reports whether err is a gateway failure worth resubmitting
// later, as opposed to a terminal one.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
