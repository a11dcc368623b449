package api

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// rateLimited is a huma operation middleware that limits requests per client IP.
// Returns 429 Too Many Requests with a Retry-After header when exceeded.
func (s *Server) rateLimited(ctx huma.Context, next func(huma.Context)) {
	if s.limiter == nil {
		next(ctx)
		return
	}

	key := clientIP(ctx)
	if s.limiter.Allow(key) {
		next(ctx)
		return
	}

	retry := s.limiter.RetryAfter(key)
	s.logger.Warn("rate limit exceeded",
		"ip", key,
		"operation", ctx.Operation().OperationID,
		"retry_after", retry,
	)

	ctx.SetHeader("Retry-After", strconv.Itoa(max(1, int(math.Ceil(retry.Seconds())))))
	_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, "Too many requests. Please try again later.")
}

// clientIP extracts the client IP from the request.
// Checks X-Forwarded-For and X-Real-IP headers before falling back to RemoteAddr.
func clientIP(ctx huma.Context) string {
	// First entry of the chain is the client.
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := ctx.Header("X-Real-IP"); xri != "" {
		return xri
	}

	ip := ctx.RemoteAddr()
	if i := strings.LastIndexByte(ip, ':'); i >= 0 {
		return ip[:i]
	}
	return ip
}
