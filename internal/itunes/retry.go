package itunes

import (
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"
)

// ExponentialBackoff schedules retries with exponential delays, a maximum
// delay cap and random jitter.
type ExponentialBackoff struct {
	// BaseDelay is the initial delay before the first retry.
	BaseDelay time.Duration

	// MaxDelay is the upper bound on retry delay.
	MaxDelay time.Duration

	// MaxRetries is the maximum number of retry attempts.
	MaxRetries int

	// Jitter is the proportion of randomness applied to the delay (0.0 to 1.0).
	Jitter float64
}

// NextDelay returns the delay for the given attempt number (0-indexed).
// Returns 0 when attempt >= MaxRetries, signaling no more retries.
func (e *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	if attempt >= e.MaxRetries {
		return 0
	}

	delay := float64(e.BaseDelay) * math.Pow(2, float64(attempt))
	if delay > float64(e.MaxDelay) {
		delay = float64(e.MaxDelay)
	}

	if e.Jitter > 0 {
		jitterRange := delay * e.Jitter
		//nolint:gosec // jitter needs no cryptographic randomness
		delay += jitterRange * (rand.Float64()*2 - 1)
	}
	if delay < 0 {
		delay = 0
	}

	return time.Duration(delay)
}

// retryAfterDelay raises delay to the server's Retry-After hint when the hint
// is longer. Both delta-seconds and HTTP-date forms are understood.
func retryAfterDelay(delay time.Duration, retryAfter string) time.Duration {
	if delay == 0 || retryAfter == "" {
		return delay
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return max(delay, time.Duration(seconds)*time.Second)
	}

	if t, err := http.ParseTime(retryAfter); err == nil {
		return max(delay, time.Until(t))
	}

	return delay
}
