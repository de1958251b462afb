package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/modusklar/modusklar/config"
	"github.com/modusklar/modusklar/utils"
)

// Idle clients are evicted after this long.
const clientTTL = 5 * time.Minute

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	clients   = map[string]*client{}
	clientsMu sync.Mutex
)

// RateLimitMiddleware throttles the unauthenticated endpoints (register and
// both logins) per client IP with a token bucket sized from
// RateLimitPerMinute.
func RateLimitMiddleware() gin.HandlerFunc {
	perMinute := max(config.Get().RateLimitPerMinute, 1)
	limit := rate.Every(time.Minute / time.Duration(perMinute))
	burst := max(perMinute/2, 1)

	return func(ctx *gin.Context) {
		if !limiterFor(ctx.ClientIP(), limit, burst).Allow() {
			utils.Error(ctx, http.StatusTooManyRequests, 42901, "rate limit exceeded")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// limiterFor returns the bucket for an IP, creating it on first sight and
// sweeping idle entries while the map lock is held. rate.Limiter is safe
// for concurrent use, so no per-entry lock is needed.
func limiterFor(ip string, limit rate.Limit, burst int) *rate.Limiter {
	clientsMu.Lock()
	defer clientsMu.Unlock()

	now := time.Now()
	for key, c := range clients {
		if now.Sub(c.lastSeen) > clientTTL {
			delete(clients, key)
		}
	}

	c, ok := clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(limit, burst)}
		clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter
}
