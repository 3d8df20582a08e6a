package codec

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// #region constants

const maxRetries = 2 // max 2 retries = 3 total attempts

// #endregion

// #region policy

// Attempt records one classify call.
type Attempt struct {
	Err error
}

// RetryPolicy decides whether a failed classify call is tried again.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration // multiplied by the attempt number
}

// DefaultRetryPolicy retries transient failures twice.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: maxRetries, Backoff: 100 * time.Millisecond}
}

// #endregion

// #region should-retry

// ShouldRetry reports whether another attempt is worthwhile.
// attempts contains all attempts so far (including the one just made).
func (p RetryPolicy) ShouldRetry(attempts []Attempt) bool {
	if len(attempts) == 0 {
		return false
	}

	// Max retries reached
	if len(attempts) > p.MaxRetries {
		return false
	}

	latest := attempts[len(attempts)-1]
	return latest.Err != nil && transient(latest.Err)
}

// transient reports gRPC failures that may succeed on a second try.
// Caller deadlines and malformed responses are final.
func transient(err error) bool {
	if errors.Is(err, ErrNoScores) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.ResourceExhausted, codes.Aborted:
		return true
	default:
		return false
	}
}

// wait sleeps before attempt n+1, returning early when ctx ends.
func (p RetryPolicy) wait(ctx context.Context, n int) error {
	if p.Backoff <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(p.Backoff * time.Duration(n))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// #endregion
