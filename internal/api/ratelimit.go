package api

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/healthhive/healthhive/internal/domain"
)

// clientLimiter applies a token-bucket rate limit per client IP. Buckets are
// capped; when the map is full the oldest entries are dropped wholesale, which
// at worst grants a full bucket to a returning client.
type clientLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

const maxTrackedClients = 10000

func newClientLimiter(perSecond float64, burst int) *clientLimiter {
	if perSecond <= 0 {
		perSecond = 5
	}
	if burst <= 0 {
		burst = 10
	}
	return &clientLimiter{
		buckets: make(map[string]*rate.Limiter),
		limit:   rate.Limit(perSecond),
		burst:   burst,
	}
}

func (l *clientLimiter) bucket(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.buckets[key]; ok {
		return b
	}
	if len(l.buckets) >= maxTrackedClients {
		l.buckets = make(map[string]*rate.Limiter)
	}
	b := rate.NewLimiter(l.limit, l.burst)
	l.buckets[key] = b
	return b
}

// middleware rejects requests exceeding the client's rate with 429.
func (l *clientLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.bucket(c.ClientIP()).Allow() {
			respondError(c, http.StatusTooManyRequests, domain.ErrCodeRateLimit,
				"too many analysis requests, slow down", "")
			c.Abort()
			return
		}
		c.Next()
	}
}
