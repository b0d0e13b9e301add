package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// requestIDHeader is both read from the request and echoed in the response.
const requestIDHeader = "X-Request-ID"

// GinRequestID tags every request with a unique ID, reusing the client's
// header when present.
func GinRequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = uuid.New().String()
		}

		c.Set("request_id", reqID)
		c.Header(requestIDHeader, reqID)

		c.Next()
	}
}

// GetRequestID extracts the request ID set by GinRequestID.
func GetRequestID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Get("request_id"); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

// GinCORS adds permissive CORS headers and short-circuits preflights.
func GinCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// GinGzip compresses responses.
func GinGzip() gin.HandlerFunc {
	return gzip.Gzip(gzip.BestSpeed)
}

// GinLogger logs every request through slog with latency and request ID.
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"size", c.Writer.Size(),
			"request_id", GetRequestID(c),
		}
		if err := c.Errors.Last(); err != nil {
			attrs = append(attrs, "error", err.Error())
		}
		slog.Info("HTTP request", attrs...)
	}
}

// GinRecovery turns panics into a 500 JSON response and logs the stack.
func GinRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				reqID := GetRequestID(c)
				slog.Error("panic recovered",
					"panic", err,
					"stack", string(debug.Stack()),
					"request_id", reqID,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":      true,
					"message":    "internal server error",
					"request_id": reqID,
				})
			}
		}()

		c.Next()
	}
}

// GinRateLimit bounds the request rate with a shared token bucket. Uploads
// parse whole spreadsheets, so the bucket is deliberately small.
func GinRateLimit(perSecond float64, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   true,
				"message": "too many requests, slow down",
			})
			return
		}
		c.Next()
	}
}
