// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package retry provides retry policies for the transient I/O this loader
// performs against a (possibly network-mounted) state-save directory.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	slurmerrors "github.com/jontk/slurmctld/pkg/errors"
)

// Policy defines the interface for retry policies.
type Policy interface {
	// ShouldRetry determines if a failed state-stream read should be retried.
	ShouldRetry(ctx context.Context, err error, attempt int) bool

	// WaitTime returns the wait time before the next retry.
	WaitTime(attempt int) time.Duration

	// MaxRetries returns the maximum number of retries.
	MaxRetries() int
}

// PolicyExponentialBackoff implements an exponential backoff retry policy.
type PolicyExponentialBackoff struct {
	maxRetries    int
	minWaitTime   time.Duration
	maxWaitTime   time.Duration
	backoffFactor float64
	jitter        bool
}

// NewPolicyExponentialBackoff creates a new exponential backoff retry policy.
func NewPolicyExponentialBackoff() *PolicyExponentialBackoff {
	return &PolicyExponentialBackoff{
		maxRetries:    3,
		minWaitTime:   1 * time.Second,
		maxWaitTime:   30 * time.Second,
		backoffFactor: 2.0,
		jitter:        true,
	}
}

// WithMaxRetries sets the maximum number of retries.
func (e *PolicyExponentialBackoff) WithMaxRetries(maxRetries int) *PolicyExponentialBackoff {
	e.maxRetries = maxRetries
	return e
}

// WithMinWaitTime sets the minimum wait time.
func (e *PolicyExponentialBackoff) WithMinWaitTime(minWaitTime time.Duration) *PolicyExponentialBackoff {
	e.minWaitTime = minWaitTime
	return e
}

// WithMaxWaitTime sets the maximum wait time.
func (e *PolicyExponentialBackoff) WithMaxWaitTime(maxWaitTime time.Duration) *PolicyExponentialBackoff {
	e.maxWaitTime = maxWaitTime
	return e
}

// WithBackoffFactor sets the backoff factor.
func (e *PolicyExponentialBackoff) WithBackoffFactor(backoffFactor float64) *PolicyExponentialBackoff {
	e.backoffFactor = backoffFactor
	return e
}

// WithJitter enables or disables jitter.
func (e *PolicyExponentialBackoff) WithJitter(jitter bool) *PolicyExponentialBackoff {
	e.jitter = jitter
	return e
}

// ShouldRetry determines if a failed read should be retried.
func (e *PolicyExponentialBackoff) ShouldRetry(ctx context.Context, err error, attempt int) bool {
	if attempt >= e.maxRetries {
		return false
	}

	select {
	case <-ctx.Done():
		return false
	default:
	}

	if err == nil {
		return false
	}
	return isRetryableErr(err)
}

// WaitTime returns the wait time before the next retry.
func (e *PolicyExponentialBackoff) WaitTime(attempt int) time.Duration {
	if attempt <= 0 {
		return e.minWaitTime
	}

	waitTime := time.Duration(float64(e.minWaitTime) * math.Pow(e.backoffFactor, float64(attempt-1)))

	if waitTime > e.maxWaitTime {
		waitTime = e.maxWaitTime
	}

	if e.jitter {
		jitterAmount := time.Duration(rand.Float64() * float64(waitTime) * 0.1)
		waitTime += jitterAmount
	}

	return waitTime
}

// MaxRetries returns the maximum number of retries.
func (e *PolicyExponentialBackoff) MaxRetries() int {
	return e.maxRetries
}

// FixedDelay implements a fixed delay retry policy.
type FixedDelay struct {
	maxRetries int
	delay      time.Duration
}

// NewFixedDelay creates a new fixed delay retry policy.
func NewFixedDelay(maxRetries int, delay time.Duration) *FixedDelay {
	return &FixedDelay{
		maxRetries: maxRetries,
		delay:      delay,
	}
}

// ShouldRetry determines if a failed read should be retried.
func (f *FixedDelay) ShouldRetry(ctx context.Context, err error, attempt int) bool {
	if attempt >= f.maxRetries {
		return false
	}

	select {
	case <-ctx.Done():
		return false
	default:
	}

	if err == nil {
		return false
	}
	return isRetryableErr(err)
}

// WaitTime returns the wait time before the next retry.
func (f *FixedDelay) WaitTime(attempt int) time.Duration {
	return f.delay
}

// MaxRetries returns the maximum number of retries.
func (f *FixedDelay) MaxRetries() int {
	return f.maxRetries
}

// NoRetry implements a no-retry policy, used for configuration-file parse
// and semantic errors, which are never transient.
type NoRetry struct{}

// NewNoRetry creates a new no-retry policy.
func NewNoRetry() *NoRetry {
	return &NoRetry{}
}

// ShouldRetry always returns false.
func (n *NoRetry) ShouldRetry(ctx context.Context, err error, attempt int) bool {
	return false
}

// WaitTime returns zero duration.
func (n *NoRetry) WaitTime(attempt int) time.Duration {
	return 0
}

// MaxRetries returns zero.
func (n *NoRetry) MaxRetries() int {
	return 0
}

// isRetryableErr classifies an error using pkg/errors' SlurmError when
// available, defaulting to non-retryable for anything unclassified.
func isRetryableErr(err error) bool {
	var slurmErr *slurmerrors.SlurmError
	if errors.As(err, &slurmErr) {
		return slurmErr.IsRetryable()
	}
	wrapped := slurmerrors.WrapError(err)
	return wrapped != nil && wrapped.IsRetryable()
}
