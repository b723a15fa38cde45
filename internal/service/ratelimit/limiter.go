package ratelimit

import (
    "sync"
    "time"
)

type bucket struct {
    tokens float64
    last   time.Time
}

// Limiter is a keyed token bucket. Every key gets the same capacity and refill rate.
type Limiter struct {
    mu         sync.Mutex
    m          map[string]*bucket
    capacity   float64
    refillRate float64 // tokens per second
    idleTTL    time.Duration
    now        func() time.Time
}

// New creates a limiter allowing bursts of capacity and refillPerSec sustained.
func New(capacity, refillPerSec float64) *Limiter {
    return &Limiter{
        m:          make(map[string]*bucket),
        capacity:   capacity,
        refillRate: refillPerSec,
        idleTTL:    10 * time.Minute,
        now:        time.Now,
    }
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
    now := l.now()
    l.mu.Lock()
    defer l.mu.Unlock()

    b, ok := l.m[key]
    if !ok {
        b = &bucket{tokens: l.capacity, last: now}
        l.m[key] = b
    }
    // refill
    elapsed := now.Sub(b.last).Seconds()
    if elapsed > 0 {
        b.tokens += elapsed * l.refillRate
        if b.tokens > l.capacity {
            b.tokens = l.capacity
        }
        b.last = now
    }
    if b.tokens >= 1 {
        b.tokens -= 1
        return true
    }
    return false
}

// Sweep drops buckets idle for longer than the TTL and returns how many were removed.
func (l *Limiter) Sweep() int {
    now := l.now()
    l.mu.Lock()
    defer l.mu.Unlock()
    n := 0
    for k, b := range l.m {
        if now.Sub(b.last) > l.idleTTL {
            delete(l.m, k)
            n++
        }
    }
    return n
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
    l.mu.Lock()
    defer l.mu.Unlock()
    return len(l.m)
}
