package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/go-redis/redis/v8"

	"github.com/GnandeepVenigalla/gd25th-backend/internal/ratelimit"
	"github.com/GnandeepVenigalla/gd25th-backend/internal/utils/response"
)

type RateLimitConfig struct {
	redisClient *redis.Client
	limiters    map[string]*ratelimit.TokenBucket
}

func NewRateLimitConfig(redisClient *redis.Client) *RateLimitConfig {
	config := &RateLimitConfig{
		redisClient: redisClient,
		limiters:    make(map[string]*ratelimit.TokenBucket),
	}

	// Configure rate limits for different actions
	// POST /api/login: 10/min per client, slows password guessing
	config.limiters["login"] = ratelimit.NewTokenBucket(redisClient, 10, 10)

	// POST /api/upload/start: 60/min per client
	config.limiters["upload-start"] = ratelimit.NewTokenBucket(redisClient, 60, 60)

	return config
}

func (rlc *RateLimitConfig) RateLimitMiddleware(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Buckets are keyed by client IP; the gallery has no per-user identity
			clientIP := clientIPFromRequest(r)

			// Get the appropriate rate limiter
			limiter, exists := rlc.limiters[action]
			if !exists {
				// If no rate limiter configured for this action, allow the request
				next.ServeHTTP(w, r)
				return
			}

			// Check if the client is allowed to perform this action
			allowed, err := limiter.Allow(r.Context(), clientIP, action)
			if err != nil {
				response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(
					fmt.Errorf("rate limit check failed: %w", err)))
				return
			}

			// Get remaining tokens for rate limit headers
			remaining, _ := limiter.GetRemaining(r.Context(), clientIP, action)

			w.Header().Set("X-RateLimit-Limit", getLimitForAction(action))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			w.Header().Set("X-RateLimit-Reset", "60") // Reset in 60 seconds (1 minute window)

			if !allowed {
				response.WriteJSON(w, http.StatusTooManyRequests, response.GeneralError(
					fmt.Errorf("rate limit exceeded")))
				return
			}

			// Allow the request to proceed
			next.ServeHTTP(w, r)
		})
	}
}

// clientIPFromRequest prefers the X-Forwarded-For header set by the reverse
// proxy, falling back to the socket address.
func clientIPFromRequest(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Helper function to get the limit for display in headers
func getLimitForAction(action string) string {
	switch action {
	case "login":
		return "10"
	case "upload-start":
		return "60"
	default:
		return "100" // default fallback
	}
}

// RateLimitedHandler wraps a handler with rate limiting for a specific action
func (rlc *RateLimitConfig) RateLimitedHandler(action string, handler http.HandlerFunc) http.Handler {
	return rlc.RateLimitMiddleware(action)(http.HandlerFunc(handler))
}
