// Package retry provides the single retry policy used by resync handlers.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/aws/smithy-go"
)

// Policy retries an operation with linear backoff: the wait before
// attempt n+1 is Delay multiplied by n. Attempt one runs immediately.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	Retryable   func(error) bool
}

// Default returns the policy used when config does not set one.
func Default() Policy {
	return Policy{
		MaxAttempts: 3,
		Delay:       2 * time.Second,
		Retryable:   Throttling,
	}
}

// Do runs op until it succeeds, the error is not retryable, or the
// attempts are exhausted. The last error is returned unchanged so
// callers can classify it. Cancellation during a backoff wait returns
// the context error.
func (p Policy) Do(ctx context.Context, op func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = Throttling
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = op(ctx)
		if err == nil {
			return nil
		}
		if attempt == attempts || !retryable(err) {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * p.Delay):
		}
	}
	return err
}

var throttleCodes = map[string]bool{
	"Throttling":               true,
	"ThrottlingException":      true,
	"TooManyRequestsException": true,
	"RequestLimitExceeded":     true,
	"RequestThrottled":         true,
	"SlowDown":                 true,
	"ServiceUnavailable":       true,
	"RequestTimeout":           true,
}

// Throttling reports whether err is a throttle response or a transient
// server fault worth retrying.
func Throttling(err error) bool {
	var ae smithy.APIError
	if !errors.As(err, &ae) {
		return false
	}
	if throttleCodes[ae.ErrorCode()] {
		return true
	}
	return ae.ErrorFault() == smithy.FaultServer
}
