package model

import (
	"context"
	"fmt"
	"time"
)

// RetryModel retries a wrapped Model when it fails before emitting any
// response. Failures after the first chunk are returned as is, since the
// caller may already have consumed partial output.
type RetryModel struct {
	inner       Model
	maxAttempts int
	backoff     time.Duration
}

// NewRetryModel wraps m with at most maxAttempts attempts (values below 1
// mean a single attempt). The wait before attempt n is n-1 times backoff.
func NewRetryModel(m Model, maxAttempts int, backoff time.Duration) *RetryModel {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RetryModel{inner: m, maxAttempts: maxAttempts, backoff: backoff}
}

// Generate implements Model.
func (r *RetryModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	out := make(chan Response, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		var lastErr error
		for attempt := 1; attempt <= r.maxAttempts; attempt++ {
			if attempt > 1 {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case <-time.After(time.Duration(attempt-1) * r.backoff):
				}
			}

			emitted, err := r.forward(ctx, req, out)
			if err == nil {
				return
			}
			if emitted || ctx.Err() != nil {
				errCh <- err
				return
			}
			lastErr = err
		}
		errCh <- fmt.Errorf("model %s failed after %d attempts: %w", r.inner.Info().Name, r.maxAttempts, lastErr)
	}()
	return out, errCh
}

func (r *RetryModel) forward(ctx context.Context, req Request, out chan<- Response) (bool, error) {
	respCh, errCh := r.inner.Generate(ctx, req)
	emitted := false
	for resp := range respCh {
		select {
		case out <- resp:
			emitted = true
		case <-ctx.Done():
			for range respCh {
			}
			return emitted, ctx.Err()
		}
	}
	return emitted, <-errCh
}

// Info implements Model and reports the wrapped model's metadata.
func (r *RetryModel) Info() Info { return r.inner.Info() }
