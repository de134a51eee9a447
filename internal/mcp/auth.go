package mcp

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultMCPMaxBodyBytes int64 = 1 << 20 // 1MiB

type HTTPHandlerConfig struct {
	AuthToken       string
	RateLimitPerMin int
	MaxBodyBytes    int64
}

func wrapHTTPHandler(base http.Handler, cfg HTTPHandlerConfig) http.Handler {
	h := withBodyLimit(base, cfg.MaxBodyBytes)
	h = withRateLimit(h, newHTTPRateLimiter(cfg.RateLimitPerMin))
	h = withBearerAuth(h, cfg.AuthToken)
	return h
}

func withBearerAuth(next http.Handler, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := strings.TrimSpace(r.Header.Get("Authorization"))
		if !strings.HasPrefix(authz, "Bearer ") {
			writeJSONError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		provided := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
		if token == "" || provided == "" || provided != token {
			writeJSONError(w, http.StatusForbidden, "invalid bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func withBodyLimit(next http.Handler, limit int64) http.Handler {
	if limit <= 0 {
		limit = defaultMCPMaxBodyBytes
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}
		next.ServeHTTP(w, r)
	})
}

func withRateLimit(next http.Handler, limiter *httpRateLimiter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limiter == nil {
			next.ServeHTTP(w, r)
			return
		}
		if !limiter.Allow(rateLimitKey(r)) {
			writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func rateLimitKey(r *http.Request) string {
	token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		host = strings.TrimSpace(r.RemoteAddr)
	}
	if host == "" {
		host = "unknown"
	}
	if token == "" {
		return host
	}
	return token + "|" + host
}

// httpRateLimiter keeps one token bucket per caller key.
type httpRateLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
}

func newHTTPRateLimiter(perMin int) *httpRateLimiter {
	if perMin <= 0 {
		perMin = 60
	}
	return &httpRateLimiter{
		limit:    rate.Every(time.Minute / time.Duration(perMin)),
		burst:    perMin,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (l *httpRateLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	if key == "" {
		key = "default"
	}

	l.mu.Lock()
	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow()
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
