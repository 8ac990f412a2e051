// Package ratelimit provides a fixed-window request limiter used to slow
// credential-guessing against the auth endpoints.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Outcome describes one Allow call against a key's current window.
type Outcome struct {
	Allowed   bool
	Count     int
	Limit     int
	Remaining int
	ResetAt   time.Time
}

type Limiter interface {
	Allow(ctx context.Context, key string, limit int) Outcome
}

// InMemoryLimiter counts per key within a rolling fixed window. It is the
// standalone limiter in single-instance deployments and the fallback when
// redis is unreachable.
type InMemoryLimiter struct {
	mu     sync.Mutex
	window time.Duration
	items  map[string]window
}

type window struct {
	count   int
	resetAt time.Time
}

func NewInMemory(windowSize time.Duration) *InMemoryLimiter {
	if windowSize <= 0 {
		windowSize = time.Minute
	}
	return &InMemoryLimiter{window: windowSize, items: make(map[string]window)}
}

func (l *InMemoryLimiter) Allow(ctx context.Context, key string, limit int) Outcome {
	if limit <= 0 {
		limit = 1
	}
	now := time.Now().UTC()
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, v := range l.items {
		if now.After(v.resetAt) {
			delete(l.items, k)
		}
	}
	curr, ok := l.items[key]
	if !ok || now.After(curr.resetAt) {
		curr = window{resetAt: now.Add(l.window)}
	}
	curr.count++
	l.items[key] = curr
	remaining := limit - curr.count
	if remaining < 0 {
		remaining = 0
	}
	return Outcome{
		Allowed:   curr.count <= limit,
		Count:     curr.count,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   curr.resetAt,
	}
}

// LoginKey scopes login attempts by client address and the identifier being
// tried, so one victim account cannot be hammered from many usernames.
func LoginKey(remoteIP, identifier string) string {
	return "login:" + remoteIP + ":" + identifier
}

// RegisterKey scopes registrations by client address.
func RegisterKey(remoteIP string) string {
	return "register:" + remoteIP
}
