package middleware

import (
	"net/http"
	"sync"
	"time"

	"ideas-jar/src/logger"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client IP
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	rps      rate.Limit
	burst    int
	idleTTL  time.Duration
	swept    time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second with the given burst
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*clientLimiter),
		rps:      rate.Limit(rps),
		burst:    burst,
		idleTTL:  10 * time.Minute,
	}
}

// Allow reports whether the client may proceed now
func (rl *RateLimiter) Allow(clientIP string) bool {
	return rl.allowAt(clientIP, time.Now())
}

func (rl *RateLimiter) allowAt(clientIP string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	// 古いクライアントを掃除
	if now.Sub(rl.swept) > rl.idleTTL {
		for ip, cl := range rl.limiters {
			if now.Sub(cl.lastSeen) > rl.idleTTL {
				delete(rl.limiters, ip)
			}
		}
		rl.swept = now
	}

	cl, ok := rl.limiters[clientIP]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.limiters[clientIP] = cl
	}
	cl.lastSeen = now

	return cl.limiter.AllowN(now, 1)
}

// RateLimitMiddleware レート制限用のmiddleware
func RateLimitMiddleware(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		if !rl.Allow(clientIP) {
			logger.WithFields(logrus.Fields{
				"client_ip": clientIP,
				"method":    c.Request.Method,
				"uri":       c.Request.RequestURI,
			}).Warn("レート制限に達しました")
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":  "rate_limited",
				"error": "Too Many Requests",
			})
			return
		}

		c.Next()
	}
}
