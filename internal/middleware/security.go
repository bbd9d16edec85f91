package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harborpoint/dealflow/internal/logger"
	"github.com/harborpoint/dealflow/pkg/config"
)

// SecurityHeadersMiddleware adds security headers to all responses
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'none'; connect-src 'self'; base-uri 'none'; form-action 'none'")
		c.Header("Cache-Control", "no-store, no-cache, must-revalidate")
		c.Header("Server", "")
		c.Next()
	}
}

// CORSMiddleware handles Cross-Origin Resource Sharing with
// environment-based configuration
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		var allowedOrigins []string
		if cfg.IsDevelopment() {
			allowedOrigins = []string{
				"http://localhost:3000",
				"http://localhost:8080",
				"http://127.0.0.1:3000",
				"http://127.0.0.1:8080",
			}
		} else {
			allowedOrigins = cfg.GetAllowedOrigins()
		}

		for _, allowed := range allowedOrigins {
			if origin == allowed {
				c.Header("Access-Control-Allow-Origin", origin)
				break
			}
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Requested-With")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// InputValidationMiddleware caps request size and enforces JSON bodies on
// mutating requests
func InputValidationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 10*1024*1024)

		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			contentType := c.GetHeader("Content-Type")
			if contentType == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Content-Type header is required"})
				c.Abort()
				return
			}
			if !strings.HasPrefix(contentType, "application/json") {
				c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "Unsupported content type"})
				c.Abort()
				return
			}
		}

		c.Next()
	}
}

// RateLimitingMiddleware provides basic in-memory rate limiting per
// client IP. 100 requests per minute.
func RateLimitingMiddleware() gin.HandlerFunc {
	var mu sync.Mutex
	clients := make(map[string][]time.Time)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		now := time.Now()

		mu.Lock()
		var recent []time.Time
		for _, ts := range clients[clientIP] {
			if now.Sub(ts) <= time.Minute {
				recent = append(recent, ts)
			}
		}

		if len(recent) >= 100 {
			clients[clientIP] = recent
			mu.Unlock()
			c.Header("Retry-After", "60")
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			c.Abort()
			return
		}

		clients[clientIP] = append(recent, now)
		mu.Unlock()

		c.Next()
	}
}

// RequestLoggingMiddleware logs each request with structured fields
func RequestLoggingMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := map[string]interface{}{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"client_ip":  c.ClientIP(),
			"latency_ms": time.Since(start).Milliseconds(),
		}

		if c.Writer.Status() >= 500 {
			log.Error("request failed", fields)
		} else if c.Writer.Status() >= 400 {
			log.Warn("request rejected", fields)
		} else {
			log.Info("request completed", fields)
		}
	}
}
