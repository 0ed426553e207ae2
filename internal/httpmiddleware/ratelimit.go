package httpmiddleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Limiter throttles requests with a token bucket per caller. Authenticated
// callers are keyed by account so a shared campus NAT does not starve
// students marking attendance from the same network; everyone else is keyed
// by client IP.
type Limiter struct {
	burst     int
	perMinute int

	mu      sync.Mutex
	buckets map[string]*bucket
	swept   time.Time
}

type bucket struct {
	tokens float64
	last   time.Time
}

// staleAfter is how long an idle bucket survives before the sweep drops it.
const staleAfter = 10 * time.Minute

// NewLimiter creates a limiter allowing perMinute sustained requests with a
// burst of the same size.
func NewLimiter(perMinute int) *Limiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	return &Limiter{
		burst:     perMinute,
		perMinute: perMinute,
		buckets:   make(map[string]*bucket),
		swept:     time.Now(),
	}
}

// Gin returns a handler enforcing the limit. accountID extracts the caller's
// identity; an empty result falls back to the client IP.
func (l *Limiter) Gin(accountID func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ""
		if accountID != nil {
			key = accountID(c)
		}
		if key == "" {
			key = c.ClientIP()
		}
		if key == "" {
			key = "unknown"
		}
		if !l.allow(key, time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

func (l *Limiter) allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.swept) > staleAfter {
		l.sweep(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		l.buckets[key] = &bucket{tokens: float64(l.burst) - 1, last: now}
		return true
	}
	b.tokens += now.Sub(b.last).Minutes() * float64(l.perMinute)
	if b.tokens > float64(l.burst) {
		b.tokens = float64(l.burst)
	}
	b.last = now
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// sweep drops buckets idle past staleAfter; callers hold the lock.
func (l *Limiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.last) > staleAfter {
			delete(l.buckets, key)
		}
	}
	l.swept = now
}
