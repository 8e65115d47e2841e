package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	resp "sunday-market/internal/transport/http/response"
)

// RateLimit is a single token bucket shared by every client.
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	lim := rate.NewLimiter(rps, burst)
	return func(c *gin.Context) {
		if lim.Allow() {
			c.Next()
			return
		}
		resp.Fail(c, resp.CodeTooManyRequests, "")
	}
}

type ipBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// IPLimiter keeps one bucket per client IP and forgets idle ones.
type IPLimiter struct {
	rps   rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time

	mu      sync.Mutex
	buckets map[string]*ipBucket
	swept   time.Time
}

func NewIPLimiter(rps rate.Limit, burst int) *IPLimiter {
	return &IPLimiter{
		rps:     rps,
		burst:   burst,
		idle:    10 * time.Minute,
		now:     time.Now,
		buckets: make(map[string]*ipBucket),
	}
}

func (l *IPLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if now.Sub(l.swept) > l.idle {
		for k, b := range l.buckets {
			if now.Sub(b.seen) > l.idle {
				delete(l.buckets, k)
			}
		}
		l.swept = now
	}
	b, ok := l.buckets[ip]
	if !ok {
		b = &ipBucket{lim: rate.NewLimiter(l.rps, l.burst)}
		l.buckets[ip] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}

// Middleware rejects clients whose bucket is empty.
func (l *IPLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.Allow(c.ClientIP()) {
			c.Next()
			return
		}
		resp.Fail(c, resp.CodeTooManyRequests, "")
	}
}
