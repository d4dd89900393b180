package httpapi

import (
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

func loggingMiddleware(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now().UTC()
		next.ServeHTTP(w, r)
		logger.Printf("%s %s from=%s dur=%s", r.Method, r.URL.Path, r.RemoteAddr, time.Since(start))
	})
}

// RateLimit configures the global request limiter.  The defaults leave
// plenty of headroom for a tight actuator polling loop; the limiter exists
// to keep a misbehaving client from starving the coordinator, not to shape
// normal traffic.
type RateLimit struct {
	PerSecond float64
	Burst     int
}

func rateLimitMiddleware(cfg RateLimit, next http.Handler) http.Handler {
	if cfg.PerSecond <= 0 || cfg.Burst <= 0 {
		return next
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.PerSecond), cfg.Burst)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
