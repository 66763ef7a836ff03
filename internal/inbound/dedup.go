package inbound

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduplicator remembers event ids so platform redeliveries are handled once
type Deduplicator interface {
	// Seen records id and reports whether it had been recorded before
	Seen(ctx context.Context, id string) (bool, error)
	// Forget removes id so a later redelivery is processed
	Forget(ctx context.Context, id string) error
}

// MemoryDeduplicator keeps the most recent ids in a fixed-size window
type MemoryDeduplicator struct {
	mu     sync.Mutex
	seen   map[string]struct{}
	order  []string
	next   int
	window int
}

// NewMemoryDeduplicator creates a deduplicator remembering up to window ids
func NewMemoryDeduplicator(window int) *MemoryDeduplicator {
	if window <= 0 {
		window = 1024
	}
	return &MemoryDeduplicator{
		seen:   make(map[string]struct{}, window),
		order:  make([]string, window),
		window: window,
	}
}

// Seen implements Deduplicator. The oldest id is evicted once the window is full.
func (d *MemoryDeduplicator) Seen(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true, nil
	}

	if evicted := d.order[d.next]; evicted != "" {
		delete(d.seen, evicted)
	}
	d.order[d.next] = id
	d.next = (d.next + 1) % d.window
	d.seen[id] = struct{}{}
	return false, nil
}

// Forget implements Deduplicator
func (d *MemoryDeduplicator) Forget(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; !ok {
		return nil
	}
	delete(d.seen, id)
	for i, stored := range d.order {
		if stored == id {
			d.order[i] = ""
			break
		}
	}
	return nil
}

// Len is the number of remembered ids
func (d *MemoryDeduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

// RedisDeduplicator shares seen ids between replicas through Redis keys with a TTL
type RedisDeduplicator struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisDeduplicator creates a Redis-backed deduplicator
func NewRedisDeduplicator(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisDeduplicator {
	if prefix == "" {
		prefix = "staff-absence:event:"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisDeduplicator{client: client, prefix: prefix, ttl: ttl}
}

// Seen implements Deduplicator with SETNX
func (d *RedisDeduplicator) Seen(ctx context.Context, id string) (bool, error) {
	created, err := d.client.SetNX(ctx, d.prefix+id, time.Now().Unix(), d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record event id: %w", err)
	}
	return !created, nil
}

// Forget implements Deduplicator
func (d *RedisDeduplicator) Forget(ctx context.Context, id string) error {
	if err := d.client.Del(ctx, d.prefix+id).Err(); err != nil {
		return fmt.Errorf("failed to forget event id: %w", err)
	}
	return nil
}
