package service

import (
	"math"
	"math/rand"
	"time"
)

// backoff returns base * 2^(attempts-1), capped at maxBackoff
func backoff(attempts int, base, maxBackoff time.Duration) time.Duration {
	if attempts <= 0 || base <= 0 {
		return 0
	}
	factor := math.Pow(2, float64(attempts-1))
	d := time.Duration(factor * float64(base))
	if d > maxBackoff || d <= 0 {
		return maxBackoff
	}
	return d
}

// jitter returns a random duration in [0, maxJitter]
func jitter(r *rand.Rand, maxJitter time.Duration) time.Duration {
	if maxJitter <= 0 || r == nil {
		return 0
	}
	return time.Duration(r.Int63n(int64(maxJitter) + 1)) //nolint:gosec
}
