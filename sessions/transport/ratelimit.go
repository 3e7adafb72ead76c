package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	xsync "github.com/imtaco/stream-orch-exp/internal/sync"
)

// rateLimitByIP throttles creation endpoints per client IP. Entries are never
// reaped; the key space is bounded by the number of distinct client IPs seen
// since startup, which is acceptable for a BFF sitting behind a load balancer.
func rateLimitByIP(rps rate.Limit, burst int) gin.HandlerFunc {
	limiters := xsync.NewMap[string, *rate.Limiter]()

	return func(c *gin.Context) {
		limiter, _ := limiters.LoadOrStore(c.ClientIP(), rate.NewLimiter(rps, burst))
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "Too many requests",
			})
			return
		}
		c.Next()
	}
}
