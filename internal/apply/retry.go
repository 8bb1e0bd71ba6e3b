package apply

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/mesh-intelligence/tablectl/pkg/types"
)

// RetryPolicy bounds retries of transient table service errors.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// PolicyFrom converts configuration into a policy, filling zero values with
// the defaults.
func PolicyFrom(cfg types.RetryConfig) RetryPolicy {
	p := RetryPolicy{MaxAttempts: cfg.MaxAttempts, BaseDelay: cfg.BaseDelay, MaxDelay: cfg.MaxDelay}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = types.DefaultMaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = types.DefaultBaseDelay
	}
	if p.MaxDelay < p.BaseDelay {
		p.MaxDelay = max(types.DefaultMaxDelay, p.BaseDelay)
	}
	return p
}

// Delay returns the wait before retry number attempt (0-based):
// an exponential step capped at MaxDelay, with the upper half jittered.
//
//	step  = min(MaxDelay, BaseDelay * 2^attempt)
//	delay in [step/2, step]
func (p RetryPolicy) Delay(attempt int) time.Duration {
	step := float64(p.BaseDelay) * math.Pow(2, float64(attempt))
	if step > float64(p.MaxDelay) || step <= 0 { // overflow guard
		step = float64(p.MaxDelay)
	}
	half := int64(step / 2)
	if half <= 0 {
		return time.Duration(step)
	}
	return time.Duration(half + rand.Int64N(half+1))
}

// retry calls fn until it succeeds, fails with a non-transient error, the
// attempts run out, or ctx is done. onRetry is called before each wait.
// It returns the number of attempts made and the last error.
func retry(ctx context.Context, p RetryPolicy, onRetry func(attempt int, err error, delay time.Duration), fn func() error) (int, error) {
	var err error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if err = fn(); err == nil {
			return attempt + 1, nil
		}
		if !types.IsTransient(err) || attempt == p.MaxAttempts-1 {
			return attempt + 1, err
		}

		delay := p.Delay(attempt)
		if onRetry != nil {
			onRetry(attempt+1, err, delay)
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt + 1, ctx.Err()
		case <-timer.C:
		}
	}
	return p.MaxAttempts, err
}
