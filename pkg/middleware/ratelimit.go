package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"exam-registration/pkg/ratelimit"
	"exam-registration/pkg/utils"

	"go.uber.org/zap"
)

// RateLimit caps requests per client IP for one route. A limiter backend
// failure lets the request through.
func RateLimit(
	limiter ratelimit.Limiter,
	route string,
	limit int,
	window time.Duration,
	logger *zap.Logger,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)

			ok, err := limiter.Allow(r.Context(), route+":"+ip, limit, window)
			if err != nil {
				logger.Error("Rate limiter unavailable", zap.Error(err), zap.String("route", route))
				next.ServeHTTP(w, r)
				return
			}

			if !ok {
				logger.Warn("Rate limit exceeded",
					zap.String("route", route),
					zap.String("ip", ip))
				w.Header().Set("Retry-After", retryAfter(window))
				utils.ResponseTooManyRequests(w, "Too many requests. Please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func retryAfter(window time.Duration) string {
	secs := int(window / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// ClientIP resolves the caller address, honoring proxy headers.
func ClientIP(r *http.Request) string {
	var ip string

	if tcip := r.Header.Get("True-Client-IP"); tcip != "" {
		ip = tcip
	} else if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip, _, _ = strings.Cut(xff, ",")
	} else if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		ip = xrip
	}
	ip = strings.TrimSpace(ip)

	if ip == "" || net.ParseIP(ip) == nil {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err == nil && net.ParseIP(host) != nil {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
	return ip
}
