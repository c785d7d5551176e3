package middleware

import (
	"net/http"
	"sync"
	"time"

	"carenest/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long a client's bucket survives without requests.
const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiterStore holds one token bucket per client IP. Idle buckets are
// swept on access at most once per limiterIdleTTL.
type rateLimiterStore struct {
	limiters  map[string]*limiterEntry
	perMin    int
	lastSweep time.Time
	now       func() time.Time
	mu        sync.Mutex
}

func newRateLimiterStore(perMin int) *rateLimiterStore {
	if perMin <= 0 {
		perMin = 100
	}
	return &rateLimiterStore{
		limiters:  make(map[string]*limiterEntry),
		perMin:    perMin,
		now:       time.Now,
		lastSweep: time.Now(),
	}
}

func (s *rateLimiterStore) getLimiter(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= limiterIdleTTL {
		s.sweep(now)
	}

	entry, exists := s.limiters[ip]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.perMin)), s.perMin)}
		s.limiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// sweep drops buckets idle for limiterIdleTTL. An idle bucket has refilled
// completely, so dropping it changes no client's allowance.
func (s *rateLimiterStore) sweep(now time.Time) {
	for ip, entry := range s.limiters {
		if now.Sub(entry.lastSeen) >= limiterIdleTTL {
			delete(s.limiters, ip)
		}
	}
	s.lastSweep = now
}

// RateLimitMiddleware allows perMin requests per minute per client IP.
func RateLimitMiddleware(perMin int) gin.HandlerFunc {
	store := newRateLimiterStore(perMin)
	return func(c *gin.Context) {
		ip := getClientIP(c)
		if !store.getLimiter(ip).Allow() {
			requestLogger(c).Warn("Rate limit exceeded", zap.String("ip", ip))
			utils.Failure(c, http.StatusTooManyRequests, "Rate limit exceeded. Try again later.", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
