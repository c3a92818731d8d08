package auth

import (
	"sync"
	"time"
)

// RateLimiter counts failed logins per (IP, email) pair. Once a pair fails
// MaxAttempts times inside WindowDuration it is refused until the lockout
// passes. It complements the per-account lockout stored on the user row,
// which cannot see attempts against unknown emails.
type RateLimiter struct {
	cfg RateLimitConfig
	now func() time.Time

	mu       sync.Mutex
	failures map[loginKey]*failureWindow

	done     chan struct{}
	stopOnce sync.Once
}

type loginKey struct {
	ip    string
	email string
}

type failureWindow struct {
	started     time.Time
	count       int
	lockedUntil time.Time
}

type RateLimitConfig struct {
	MaxAttempts     int           // failures allowed per window (default 5)
	WindowDuration  time.Duration // default 15m
	LockoutDuration time.Duration // default 30m
	CleanupInterval time.Duration // default 5m
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxAttempts:     5,
		WindowDuration:  15 * time.Minute,
		LockoutDuration: 30 * time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// NewRateLimiter starts a limiter and its cleanup goroutine. Zero config
// fields take the defaults. Call Stop to release the goroutine.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	def := DefaultRateLimitConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.WindowDuration <= 0 {
		cfg.WindowDuration = def.WindowDuration
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}

	rl := &RateLimiter{
		cfg:      cfg,
		now:      time.Now,
		failures: make(map[loginKey]*failureWindow),
		done:     make(chan struct{}),
	}
	go rl.janitor()
	return rl
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// Allow reports whether a login attempt for the pair may proceed and, if
// not, how long until it may.
func (rl *RateLimiter) Allow(ip, email string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w := rl.window(loginKey{ip, email}, now, false)
	if w == nil {
		return true, 0
	}
	if now.Before(w.lockedUntil) {
		return false, w.lockedUntil.Sub(now)
	}
	return true, 0
}

// RecordFailure counts a failed attempt. It reports whether the pair is now
// locked out and for how long.
func (rl *RateLimiter) RecordFailure(ip, email string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w := rl.window(loginKey{ip, email}, now, true)
	w.count++
	if w.count < rl.cfg.MaxAttempts {
		return false, 0
	}
	w.lockedUntil = now.Add(rl.cfg.LockoutDuration)
	return true, rl.cfg.LockoutDuration
}

// RecordSuccess forgets the pair's failures.
func (rl *RateLimiter) RecordSuccess(ip, email string) {
	rl.mu.Lock()
	delete(rl.failures, loginKey{ip, email})
	rl.mu.Unlock()
}

// window returns the live failure window for key. An expired window (past
// both its counting period and any lockout) is discarded; create controls
// whether a fresh one replaces it. Callers hold mu.
func (rl *RateLimiter) window(key loginKey, now time.Time, create bool) *failureWindow {
	w, ok := rl.failures[key]
	if ok && rl.expired(w, now) {
		delete(rl.failures, key)
		ok = false
	}
	if !ok {
		if !create {
			return nil
		}
		w = &failureWindow{started: now}
		rl.failures[key] = w
	}
	return w
}

func (rl *RateLimiter) expired(w *failureWindow, now time.Time) bool {
	return now.Sub(w.started) > rl.cfg.WindowDuration && !now.Before(w.lockedUntil)
}

// sweep drops expired windows and returns how many were dropped.
func (rl *RateLimiter) sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	dropped := 0
	for key, w := range rl.failures {
		if rl.expired(w, now) {
			delete(rl.failures, key)
			dropped++
		}
	}
	return dropped
}

func (rl *RateLimiter) janitor() {
	ticker := time.NewTicker(rl.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.done:
			return
		}
	}
}
