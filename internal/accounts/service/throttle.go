package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginThrottle limits login attempts per key (the normalized email) with a
// token bucket per key. It exists to slow down online credential guessing;
// the per-request cost of the hash does the rest.
type LoginThrottle struct {
	limiters sync.Map // map[string]*rate.Limiter
	rate     rate.Limit
	burst    int

	mu          sync.Mutex
	lastCleanup time.Time
}

// NewLoginThrottle allows `attempts` logins per `window` for each key, with
// the whole budget available as a burst. Non-positive arguments fall back
// to 5 attempts per minute.
func NewLoginThrottle(attempts int, window time.Duration) *LoginThrottle {
	if attempts <= 0 {
		attempts = 5
	}
	if window <= 0 {
		window = time.Minute
	}
	return &LoginThrottle{
		rate:        rate.Limit(float64(attempts) / window.Seconds()),
		burst:       attempts,
		lastCleanup: time.Now(),
	}
}

// Allow reports whether an attempt for key may proceed now. An empty key is
// never throttled.
func (t *LoginThrottle) Allow(key string) bool {
	if key == "" {
		return true
	}
	allowed := t.limiter(key).Allow()
	t.maybeCleanup()
	return allowed
}

func (t *LoginThrottle) limiter(key string) *rate.Limiter {
	if lim, ok := t.limiters.Load(key); ok {
		return lim.(*rate.Limiter)
	}
	lim, _ := t.limiters.LoadOrStore(key, rate.NewLimiter(t.rate, t.burst))
	return lim.(*rate.Limiter)
}

// maybeCleanup drops limiters whose buckets are full again, i.e. keys that
// have been idle for at least a window, so the map cannot grow without
// bound.
func (t *LoginThrottle) maybeCleanup() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if time.Since(t.lastCleanup) < 5*time.Minute {
		return
	}
	t.lastCleanup = time.Now()

	t.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(t.burst) {
			t.limiters.Delete(key)
		}
		return true
	})
}
