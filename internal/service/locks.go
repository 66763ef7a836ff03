package service

import (
	"sync"

	"github.com/google/uuid"
)

// reportLocks hands out one RWMutex per report id. Entries are reference
// counted and removed when the last holder releases them.
type reportLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*reportLock
}

type reportLock struct {
	sync.RWMutex
	refs int
}

func newReportLocks() *reportLocks {
	return &reportLocks{locks: make(map[uuid.UUID]*reportLock)}
}

func (l *reportLocks) acquire(id uuid.UUID) *reportLock {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[id]
	if !ok {
		lock = &reportLock{}
		l.locks[id] = lock
	}
	lock.refs++
	return lock
}

func (l *reportLocks) release(id uuid.UUID, lock *reportLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, id)
	}
}

// Lock takes the exclusive lock for id and returns its release func
func (l *reportLocks) Lock(id uuid.UUID) func() {
	lock := l.acquire(id)
	lock.Lock()
	return func() {
		lock.Unlock()
		l.release(id, lock)
	}
}

// RLock takes the shared lock for id and returns its release func
func (l *reportLocks) RLock(id uuid.UUID) func() {
	lock := l.acquire(id)
	lock.RLock()
	return func() {
		lock.RUnlock()
		l.release(id, lock)
	}
}

// size is the number of live entries
func (l *reportLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
