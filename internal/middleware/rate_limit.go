// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/smartify/sim-backend/internal/utils"
)

// ipLimiter hands out one token bucket per client IP and forgets clients
// that stay idle for a few minutes.
type ipLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPLimiter(limit rate.Limit, burst int) *ipLimiter {
	l := &ipLimiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		burst:   burst,
	}
	go l.evictIdle(time.Minute, 3*time.Minute)
	return l
}

func (l *ipLimiter) evictIdle(every, maxIdle time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		for ip, b := range l.buckets {
			if time.Since(b.lastSeen) > maxIdle {
				delete(l.buckets, ip)
			}
		}
		l.mu.Unlock()
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[ip]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[ip] = b
	}
	b.lastSeen = time.Now()
	return b.limiter.Allow()
}

func (l *ipLimiter) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "RATE_LIMITED",
				"Too many requests, please slow down", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

var (
	generalLimiter = newIPLimiter(rate.Every(time.Second), 10)
	authLimiter    = newIPLimiter(rate.Every(time.Minute), 5)
	otpLimiter     = newIPLimiter(rate.Every(time.Minute), 3)
	uploadLimiter  = newIPLimiter(rate.Every(time.Minute), 10)
)

// GeneralRateLimit applies to every route.
func GeneralRateLimit() gin.HandlerFunc {
	return generalLimiter.handler()
}

// AuthRateLimit throttles login attempts.
func AuthRateLimit() gin.HandlerFunc {
	return authLimiter.handler()
}

// OTPRateLimit throttles OTP sends so the pool of codes cannot be
// brute-forced through resends.
func OTPRateLimit() gin.HandlerFunc {
	return otpLimiter.handler()
}

// UploadRateLimit throttles document uploads.
func UploadRateLimit() gin.HandlerFunc {
	return uploadLimiter.handler()
}
