package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/opsdash/internal/utils"
)

const (
	maxInvalidAttempts = 5
	attemptWindow      = time.Minute
	cleanupEvery       = 5 * time.Minute
)

// InvalidAuthRateLimiter limits failed login attempts per IP. Stale entries
// are swept lazily from Allow.
type InvalidAuthRateLimiter struct {
	mu        sync.Mutex
	attempts  map[string]*attemptInfo
	lastSweep time.Time
	now       func() time.Time
}

type attemptInfo struct {
	count   int
	firstAt time.Time
}

func NewInvalidAuthRateLimiter() *InvalidAuthRateLimiter {
	return &InvalidAuthRateLimiter{
		attempts: make(map[string]*attemptInfo),
		now:      time.Now,
	}
}

// Blocked reports whether ip has used up its failed attempts in the
// current window.
func (r *InvalidAuthRateLimiter) Blocked(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, ok := r.attempts[ip]
	if !ok || r.now().Sub(info.firstAt) > attemptWindow {
		return false
	}
	return info.count >= maxInvalidAttempts
}

// Allow records a failed attempt for ip and reports whether it is still
// within the limit of 5 attempts per minute.
func (r *InvalidAuthRateLimiter) Allow(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)

	info, exists := r.attempts[ip]
	if !exists || now.Sub(info.firstAt) > attemptWindow {
		r.attempts[ip] = &attemptInfo{count: 1, firstAt: now}
		return true
	}

	if info.count >= maxInvalidAttempts {
		return false
	}
	info.count++
	return true
}

// sweep drops expired entries at most once per cleanupEvery. Callers hold mu.
func (r *InvalidAuthRateLimiter) sweep(now time.Time) {
	if now.Sub(r.lastSweep) < cleanupEvery {
		return
	}
	r.lastSweep = now
	for ip, info := range r.attempts {
		if now.Sub(info.firstAt) > attemptWindow {
			delete(r.attempts, ip)
		}
	}
}

// RejectBlocked aborts requests from IPs that exhausted their failed
// attempts with 429.
func (r *InvalidAuthRateLimiter) RejectBlocked() gin.HandlerFunc {
	return func(c *gin.Context) {
		if r.Blocked(c.ClientIP()) {
			utils.Error(c, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Too many failed login attempts, try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}
