package service

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoff(t *testing.T) {
	base := 100 * time.Millisecond
	maxBackoff := time.Second

	testCases := []struct {
		name     string
		attempts int
		expected time.Duration
	}{
		{"no attempts", 0, 0},
		{"first retry", 1, 100 * time.Millisecond},
		{"second retry", 2, 200 * time.Millisecond},
		{"third retry", 3, 400 * time.Millisecond},
		{"capped", 5, time.Second},
		{"overflow is capped", 200, time.Second},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, backoff(tc.attempts, base, maxBackoff))
		})
	}

	assert.Zero(t, backoff(3, 0, maxBackoff))
}

func TestJitter(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	assert.Zero(t, jitter(r, 0))
	assert.Zero(t, jitter(nil, time.Second))

	for i := 0; i < 100; i++ {
		d := jitter(r, 50*time.Millisecond)
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 50*time.Millisecond)
	}
}

func TestReportLocks(t *testing.T) {
	t.Run("entries are removed after release", func(t *testing.T) {
		locks := newReportLocks()
		id := uuid.New()

		unlock := locks.Lock(id)
		assert.Equal(t, 1, locks.size())
		unlock()
		assert.Equal(t, 0, locks.size())

		runlockA := locks.RLock(id)
		runlockB := locks.RLock(id)
		assert.Equal(t, 1, locks.size())
		runlockA()
		assert.Equal(t, 1, locks.size())
		runlockB()
		assert.Equal(t, 0, locks.size())
	})

	t.Run("exclusive lock serializes holders", func(t *testing.T) {
		locks := newReportLocks()
		id := uuid.New()

		var (
			wg      sync.WaitGroup
			inside  int
			maxSeen int
			mu      sync.Mutex
		)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := locks.Lock(id)
				defer unlock()

				mu.Lock()
				inside++
				if inside > maxSeen {
					maxSeen = inside
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				inside--
				mu.Unlock()
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, maxSeen)
		assert.Equal(t, 0, locks.size())
	})

	t.Run("different reports do not block each other", func(t *testing.T) {
		locks := newReportLocks()
		unlockA := locks.Lock(uuid.New())
		defer unlockA()

		done := make(chan struct{})
		go func() {
			unlockB := locks.Lock(uuid.New())
			unlockB()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			require.Fail(t, "lock on another report blocked")
		}
	})
}
