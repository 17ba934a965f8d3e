// Package limiter spaces out requests per provider key so indexers are not
// hammered when many searches run back to back. The in-memory limiter serves
// a single process; the redis-backed one shares the schedule across restarts
// when a redis URL is configured.
package limiter

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is a provider-keyed pacer. Each WaitAndPulse call claims the
// next free slot for its key and sleeps until that slot arrives.
type MemoryLimiter struct {
	mu   sync.Mutex
	next map[string]time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		next: make(map[string]time.Time),
	}
}

func (l *MemoryLimiter) WaitAndPulse(ctx context.Context, key string, interval time.Duration) error {
	l.mu.Lock()
	now := time.Now()

	slot := now
	if next, ok := l.next[key]; ok && next.After(now) {
		slot = next
	}
	l.next[key] = slot.Add(interval)
	l.mu.Unlock()

	delay := time.Until(slot)
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
