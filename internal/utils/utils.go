package utils

import (
	"context"
	"time"
)

// WaitWith blocks for d or until ctx is done, whichever comes first. The
// caller supplies the sleep function so packages with their own swappable
// sleep keep tests instant.
func WaitWith(ctx context.Context, d time.Duration, sleepFn func(time.Duration)) error {
	if d <= 0 {
		return ctx.Err()
	}

	if sleepFn == nil {
		sleepFn = time.Sleep
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sleepFn(d)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}
