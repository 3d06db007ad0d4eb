package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	ActionCart        = "cart"
	ActionSendMessage = "send_message"
	ActionAuth        = "auth"
)

// Rule allows Burst events per Window, refilled evenly.
type Rule struct {
	Burst  int
	Window time.Duration
}

func (r Rule) limit() rate.Limit {
	if r.Window <= 0 || r.Burst <= 0 {
		return rate.Inf
	}
	return rate.Every(r.Window / time.Duration(r.Burst))
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per (key, action).
type RateLimiter struct {
	rules    map[string]Rule
	fallback Rule
	buckets  map[string]*entry
	mutex    sync.Mutex
	now      func() time.Time
}

func NewRateLimiter(rules map[string]Rule) *RateLimiter {
	return &RateLimiter{
		rules:    rules,
		fallback: Rule{Burst: 20, Window: time.Minute},
		buckets:  make(map[string]*entry),
		now:      time.Now,
	}
}

// Allow consumes one token. When refused it reports how long until the next token.
func (rl *RateLimiter) Allow(key, action string) (bool, time.Duration) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	e := rl.bucketLocked(key, action, now)
	e.lastSeen = now

	r := e.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, 0
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (rl *RateLimiter) bucketLocked(key, action string, now time.Time) *entry {
	id := key + ":" + action
	e, ok := rl.buckets[id]
	if !ok {
		rule, found := rl.rules[action]
		if !found {
			rule = rl.fallback
		}
		e = &entry{limiter: rate.NewLimiter(rule.limit(), rule.Burst), lastSeen: now}
		rl.buckets[id] = e
	}
	return e
}

// Cleanup drops buckets idle for longer than maxIdle.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	for id, e := range rl.buckets {
		if now.Sub(e.lastSeen) > maxIdle {
			delete(rl.buckets, id)
		}
	}
}

func (rl *RateLimiter) StartCleanupRoutine(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.Cleanup(time.Hour)
			case <-ctx.Done():
				return
			}
		}
	}()
}
