package analysis

import (
	"context"
	"time"
)

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = time.Second
)

// sleepFunc waits for d or until ctx ends. Tests swap it to record delays.
type sleepFunc func(ctx context.Context, d time.Duration) error

func timerSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retrier runs a call up to MaxRetries times in total, sleeping BaseDelay*2^attempt
// between attempts. Only kinds reporting Retryable are attempted again.
type retrier struct {
	cfg     RetryConfig
	sleep   sleepFunc
	onRetry func(attempt int, delay time.Duration, err error)
}

func newRetrier(cfg RetryConfig) retrier {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaultBaseDelay
	}
	return retrier{cfg: cfg, sleep: timerSleep}
}

// backoff is the delay slept after the given zero-based attempt fails.
func (r retrier) backoff(attempt int) time.Duration {
	return r.cfg.BaseDelay * time.Duration(1<<uint(attempt))
}

func retryVal[T any](ctx context.Context, r retrier, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 0; attempt < r.cfg.MaxRetries; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if !Classify(err).Retryable() {
			return zero, err
		}
		if attempt >= r.cfg.MaxRetries-1 {
			break
		}

		delay := r.backoff(attempt)
		if r.onRetry != nil {
			r.onRetry(attempt+1, delay, err)
		}
		if sleepErr := r.sleep(ctx, delay); sleepErr != nil {
			return zero, NetworkError(sleepErr)
		}
	}
	return zero, lastErr
}
