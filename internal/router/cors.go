package router

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/readrover/internal/config"

	"github.com/gin-gonic/gin"
)

var (
	defaultCORSMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	defaultCORSHeaders = []string{"Content-Type", "Authorization", requestIDHeader}
)

type corsPolicy struct {
	wildcard    bool
	origins     map[string]struct{}
	credentials bool
	methods     string
	headers     string
	maxAge      string
}

func newCORSPolicy(cfg config.CORSConfig) corsPolicy {
	p := corsPolicy{
		origins:     make(map[string]struct{}, len(cfg.AllowedOrigins)),
		credentials: cfg.AllowCredentials,
		methods:     strings.Join(orDefault(cfg.AllowedMethods, defaultCORSMethods), ", "),
		headers:     strings.Join(orDefault(cfg.AllowedHeaders, defaultCORSHeaders), ", "),
	}
	if cfg.MaxAge > 0 {
		p.maxAge = strconv.Itoa(cfg.MaxAge)
	}
	for _, origin := range cfg.AllowedOrigins {
		origin = strings.ToLower(strings.TrimSpace(origin))
		if origin == "*" {
			p.wildcard = true
			continue
		}
		if origin != "" {
			p.origins[origin] = struct{}{}
		}
	}
	if len(cfg.AllowedOrigins) == 0 {
		p.wildcard = true
	}
	return p
}

// allowOrigin 返回 Access-Control-Allow-Origin 的值，空串表示不放行
// 携带凭证时不能返回 *，改为回显请求来源
func (p corsPolicy) allowOrigin(origin string) string {
	if p.wildcard {
		if p.credentials && origin != "" {
			return origin
		}
		return "*"
	}
	if _, ok := p.origins[strings.ToLower(origin)]; ok {
		return origin
	}
	return ""
}

// CORSMiddleware 跨域中间件，预检请求直接返回 204
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	policy := newCORSPolicy(cfg)
	return func(c *gin.Context) {
		h := c.Writer.Header()
		if origin := policy.allowOrigin(c.GetHeader("Origin")); origin != "" {
			h.Set("Access-Control-Allow-Origin", origin)
			if origin != "*" {
				h.Add("Vary", "Origin")
			}
		}
		if policy.credentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		h.Set("Access-Control-Allow-Methods", policy.methods)
		h.Set("Access-Control-Allow-Headers", policy.headers)
		h.Set("Access-Control-Expose-Headers", requestIDHeader)
		if policy.maxAge != "" {
			h.Set("Access-Control-Max-Age", policy.maxAge)
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func orDefault(values, fallback []string) []string {
	if len(values) == 0 {
		return fallback
	}
	return values
}
