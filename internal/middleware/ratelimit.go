package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/tickerlens/internal/domain/dto"
)

// sweepAt is the number of tracked clients above which stale ones are dropped.
const sweepAt = 10000

// client represents a rate-limited client with request count and window start.
type client struct {
	windowStart time.Time
	count       int
}

type limiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   int
	window  time.Duration
	now     func() time.Time
}

// allow records one request from ip and reports whether it is within the
// limit, plus the time left in the current window.
func (l *limiter) allow(ip string) (bool, time.Duration) {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.clients) > sweepAt {
		for k, cl := range l.clients {
			if now.Sub(cl.windowStart) > l.window {
				delete(l.clients, k)
			}
		}
	}

	cl, ok := l.clients[ip]
	if !ok || now.Sub(cl.windowStart) > l.window {
		cl = &client{windowStart: now}
		l.clients[ip] = cl
	}
	cl.count++
	return cl.count <= l.limit, l.window - now.Sub(cl.windowStart)
}

// RateLimiter is an in-memory fixed-window limiter keyed by client IP.
//
// Behavior:
//   - Allows up to limit requests per window for each IP.
//   - If the limit is exceeded, returns 429 with a Retry-After header.
//   - A limit <= 0 disables limiting.
//
// Usage:
//
//	router := gin.New()
//	router.Use(middleware.RateLimiter(60, time.Minute))
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	l := &limiter{clients: make(map[string]*client), limit: limit, window: window, now: time.Now}
	return func(c *gin.Context) {
		ok, left := l.allow(c.ClientIP())
		if !ok {
			secs := int(left.Round(time.Second) / time.Second)
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse("rate limit exceeded", nil))
			return
		}
		c.Next()
	}
}
