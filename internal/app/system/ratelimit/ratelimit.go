// internal/app/system/ratelimit/ratelimit.go

// Package ratelimit throttles credential guessing. Sign-in attempts are
// counted per client IP and per target email so neither a single host nor a
// distributed sweep against one account gets unlimited tries.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter counts events per key over a fixed window. Safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int
	duration time.Duration
}

type window struct {
	count     int
	expiresAt time.Time
}

// New creates a limiter allowing limit events per duration per key.
func New(limit int, duration time.Duration) *Limiter {
	l := &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
	}
	go l.sweep(duration * 2)
	return l
}

// Allow records an event for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, exists := l.windows[key]
	if !exists || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.duration)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Reset clears the window for key. Called after a successful sign-in so a
// legitimate user who fumbled their password is not locked out next time.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// sweep drops expired windows so the map does not grow without bound.
func (l *Limiter) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for range ticker.C {
		l.mu.Lock()
		now := time.Now()
		for key, w := range l.windows {
			if now.After(w.expiresAt) {
				delete(l.windows, key)
			}
		}
		l.mu.Unlock()
	}
}

// ClientIP extracts the client address, honoring X-Forwarded-For and
// X-Real-IP for proxied deployments before falling back to RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// SignInLimiter throttles sign-in attempts on two axes: per source IP and
// per target email.
type SignInLimiter struct {
	ip    *Limiter
	email *Limiter
}

// NewSignInLimiter uses the stock thresholds: 10 attempts per IP per minute
// and 5 attempts per email per five minutes.
func NewSignInLimiter() *SignInLimiter {
	return &SignInLimiter{
		ip:    New(10, time.Minute),
		email: New(5, 5*time.Minute),
	}
}

// Check records a sign-in attempt and reports whether it may proceed. The
// reason is safe to show to the caller.
func (sl *SignInLimiter) Check(r *http.Request, email string) (bool, string) {
	if !sl.ip.Allow(ClientIP(r)) {
		return false, "too many sign-in attempts; wait a minute and try again"
	}
	if email != "" {
		if !sl.email.Allow(strings.ToLower(strings.TrimSpace(email))) {
			return false, "too many sign-in attempts for this account; wait a few minutes"
		}
	}
	return true, ""
}

// ResetEmail clears the per-account counter after a successful sign-in.
func (sl *SignInLimiter) ResetEmail(email string) {
	if email != "" {
		sl.email.Reset(strings.ToLower(strings.TrimSpace(email)))
	}
}
