package auth

import (
	"sync"
	"time"
)

// LoginLimiter tracks failed login attempts per client key over a sliding
// window. Once the window holds the maximum number of attempts, further
// logins from that key are refused until the oldest attempt ages out.
type LoginLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	max      int
	window   time.Duration
	now      func() time.Time
}

// NewLoginLimiter creates a limiter allowing max attempts per window.
func NewLoginLimiter(max int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		attempts: make(map[string][]time.Time),
		max:      max,
		window:   window,
		now:      time.Now,
	}
}

// Allow reports whether key may attempt a login now. When refused, the
// returned duration says how long until the next attempt becomes possible.
func (l *LoginLimiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	recent := l.prune(key)
	if len(recent) < l.max {
		return true, 0
	}
	retryAfter := recent[0].Add(l.window).Sub(l.now())
	if retryAfter < 0 {
		retryAfter = 0
	}
	return false, retryAfter
}

// RecordFailure registers a failed attempt for key.
func (l *LoginLimiter) RecordFailure(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	recent := l.prune(key)
	l.attempts[key] = append(recent, l.now())
}

// Reset clears the attempt history for key after a successful login.
func (l *LoginLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.attempts, key)
}

// prune drops attempts older than the window. Caller holds the lock.
func (l *LoginLimiter) prune(key string) []time.Time {
	cutoff := l.now().Add(-l.window)
	recent := l.attempts[key][:0]
	for _, at := range l.attempts[key] {
		if at.After(cutoff) {
			recent = append(recent, at)
		}
	}
	if len(recent) == 0 {
		delete(l.attempts, key)
		return nil
	}
	l.attempts[key] = recent
	return recent
}
