package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/JustJay7/case-lookup/pkg/logger"
)

// IPRateLimiter allows each client IP limit requests per window, with bursts
// up to limit. Limiters of idle clients expire.
type IPRateLimiter struct {
	limiters *gocache.Cache
	rate     rate.Limit
	burst    int
	logger   *logger.Logger
}

// NewIPRateLimiter returns a limiter; a non-positive limit disables it.
func NewIPRateLimiter(limit int, window time.Duration, logger *logger.Logger) *IPRateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	r := rate.Inf
	if limit > 0 {
		r = rate.Limit(float64(limit) / window.Seconds())
	}
	return &IPRateLimiter{
		limiters: gocache.New(10*window, 10*window),
		rate:     r,
		burst:    limit,
		logger:   logger,
	}
}

func (i *IPRateLimiter) limiter(ip string) *rate.Limiter {
	if l, ok := i.limiters.Get(ip); ok {
		i.limiters.SetDefault(ip, l)
		return l.(*rate.Limiter)
	}
	l := rate.NewLimiter(i.rate, i.burst)
	if err := i.limiters.Add(ip, l, gocache.DefaultExpiration); err != nil {
		// another request created it first
		if existing, ok := i.limiters.Get(ip); ok {
			return existing.(*rate.Limiter)
		}
	}
	return l
}

// RateLimit returns a middleware that rate limits by IP.
func (i *IPRateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if i.rate == rate.Inf {
			c.Next()
			return
		}

		ip := c.ClientIP()
		if !i.limiter(ip).Allow() {
			i.logger.Warn("Rate limit exceeded", "client_ip", ip, "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "Too many requests, please try again later",
			})
			return
		}

		c.Next()
	}
}
