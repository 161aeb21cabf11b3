package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/studyhub-il/studyhub/internal/app/models/dto"
	"github.com/studyhub-il/studyhub/internal/pkg/logger"
	"github.com/studyhub-il/studyhub/internal/pkg/ratelimit"
)

const (
	RequestIDHeader    = "X-Request-ID"
	requestIDKey       = "studyhub.requestID"
	maxRequestIDLength = 64
)

// RequestID propagates a client supplied X-Request-ID or generates one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the id assigned by RequestID
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequestLogger logs one line per request
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		switch {
		case status >= http.StatusInternalServerError:
			event = logger.Error()
		case status >= http.StatusBadRequest:
			event = logger.Warn()
		}

		if actor := CurrentActor(c); actor != nil {
			event = event.Int64("userID", actor.UserID)
		}

		event.
			Str("requestID", GetRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Int("bodySize", c.Writer.Size()).
			Msg("request")
	}
}

// CORS allows the configured web client origin
func CORS(clientURL string) gin.HandlerFunc {
	origins := []string{"http://localhost:5173"}
	if clientURL != "" && clientURL != origins[0] {
		origins = append(origins, clientURL)
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// RateLimit throttles requests per client IP
func RateLimit(limiter *ratelimit.KeyedLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Get(c.ClientIP()).Allow() {
			logger.Warn().
				Str("ip", c.ClientIP()).
				Str("path", c.Request.URL.Path).
				Msg("Rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewFailureResponse(
				dto.NewErrorDetail(dto.ErrorCodeRateLimited, "יותר מדי בקשות, נסה שוב מאוחר יותר"),
			))
			return
		}
		c.Next()
	}
}

// QuotaLimit caps how often one user may perform the named action within
// window. Must run after JWTAuth. Quota backend errors let the request through.
func QuotaLimit(quota ratelimit.Quota, name string, limit int, window time.Duration, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := CurrentActor(c)
		if actor == nil {
			c.Next()
			return
		}

		key := name + ":" + strconv.FormatInt(actor.UserID, 10)
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		allowed, err := quota.Allow(ctx, key, limit, window)
		cancel()
		if err != nil {
			logger.Warn().Err(err).Str("quota", name).Msg("Quota check failed")
			c.Next()
			return
		}
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewFailureResponse(
				dto.NewErrorDetail(dto.ErrorCodeRateLimited, message),
			))
			return
		}
		c.Next()
	}
}
