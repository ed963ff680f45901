package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yeisme/audiovault/pkg/configs"
	"github.com/yeisme/audiovault/pkg/internal/types"
)

const (
	limiterCleanupInterval = 10 * time.Minute
	maxLimiterEntries      = 10000
)

// RateLimitMiddleware 返回一个基于配置的限流中间件.
func RateLimitMiddleware(cfg configs.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RPS <= 0 {
		return pass
	}

	return newLimiter(cfg.Key, cfg.RPS, cfg.Burst).handler()
}

// UploadRateLimitMiddleware 上传接口单独的限流，维度与全局限流相同.
func UploadRateLimitMiddleware(cfg configs.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.Upload.RPS <= 0 {
		return pass
	}

	return newLimiter(cfg.Key, cfg.Upload.RPS, cfg.Upload.Burst).handler()
}

func pass(c *gin.Context) { c.Next() }

type keyedLimiter struct {
	mode  string
	rps   float64
	burst int

	mu       sync.Mutex
	global   *rate.Limiter
	limiters map[string]*rate.Limiter
	lastScan time.Time
}

func newLimiter(key string, rps float64, burst int) *keyedLimiter {
	// 选择 key 维度：global、ip、header:Header-Name
	mode := strings.ToLower(strings.TrimSpace(key))

	k := &keyedLimiter{mode: mode, rps: rps, burst: burst, limiters: map[string]*rate.Limiter{}, lastScan: time.Now()}
	if mode == "global" || mode == "" {
		k.global = rate.NewLimiter(rate.Limit(rps), burst)
	}

	return k
}

func (k *keyedLimiter) get(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	// 简化：不做逐个访问时间统计，仅在 map 较大时重置
	if now := time.Now(); now.Sub(k.lastScan) > limiterCleanupInterval {
		k.lastScan = now
		if len(k.limiters) > maxLimiterEntries {
			k.limiters = map[string]*rate.Limiter{}
		}
	}

	if l, ok := k.limiters[key]; ok {
		return l
	}

	l := rate.NewLimiter(rate.Limit(k.rps), k.burst)
	k.limiters[key] = l

	return l
}

func (k *keyedLimiter) key(c *gin.Context) string {
	var key string

	if h, ok := strings.CutPrefix(k.mode, "header:"); ok {
		key = c.GetHeader(h)
	}

	if key == "" {
		key = clientIP(c)
	}

	if key == "" {
		key = "unknown"
	}

	return key
}

func (k *keyedLimiter) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		l := k.global
		if l == nil {
			l = k.get(k.key(c))
		}

		if !l.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				types.ErrorResponse{Message: "rate limit exceeded, request too frequent, please try again later"})

			return
		}

		c.Next()
	}
}

func clientIP(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		// 进一步尝试从 RemoteAddr
		host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
		if err == nil {
			ip = host
		} else {
			ip = c.Request.RemoteAddr
		}
	}

	return ip
}
