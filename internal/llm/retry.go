package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// retrier decorates a Provider with exponential backoff. Transient
// failures (rate limits, outages, network blips) are retried up to
// MaxAttempts; a TruncatedError or a cancelled context fails fast, and
// unusable output gets exactly one more shot since the question
// supplier rephrases and resubmits on its own above this layer.
type retrier struct {
	next Provider
	cfg  RetryConfig
}

// WithRetry wraps a Provider with retry logic.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &retrier{next: p, cfg: cfg}
}

func (r *retrier) ModelID() string { return r.next.ModelID() }

func (r *retrier) Generate(ctx context.Context, req Request) (*Response, error) {
	delay := r.cfg.InitialWait
	retriedBadOutput := false

	for attempt := 1; ; attempt++ {
		resp, err := r.next.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		wait := delay
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		case isTruncated(err):
			// Needs a bigger token budget, not another attempt.
			return nil, err
		case isBadOutput(err):
			if retriedBadOutput {
				return nil, err
			}
			retriedBadOutput = true
		default:
			// Rate limits, outages, and plain network errors all retry.
			// A 429 with a server-requested pause overrides the backoff.
			var rl *RateLimitError
			if errors.As(err, &rl) && rl.RetryAfter > 0 {
				wait = rl.RetryAfter
			}
		}

		if attempt >= r.cfg.MaxAttempts {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(jittered(wait)):
		}

		delay = time.Duration(float64(delay) * r.cfg.Multiplier)
		if delay > r.cfg.MaxWait {
			delay = r.cfg.MaxWait
		}
	}
}

func isTruncated(err error) bool {
	var t *TruncatedError
	return errors.As(err, &t)
}

func isBadOutput(err error) bool {
	var bad *InvalidOutputError
	return errors.As(err, &bad)
}

// jittered spreads a wait by ±20% so concurrent prefetch workers do not
// hammer the backend in lockstep after a shared outage.
func jittered(d time.Duration) time.Duration {
	f := float64(d) * (1 + 0.2*(2*rand.Float64()-1))
	if f < 0 {
		return 0
	}
	return time.Duration(f)
}
