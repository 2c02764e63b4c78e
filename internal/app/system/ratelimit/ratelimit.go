// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/projecthub/internal/app/system/authscope"
	"github.com/dalemusser/projecthub/internal/app/system/respond"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Limiter is a keyed token-bucket limiter. Each key (principal or client IP)
// gets its own bucket refilled at perMinute/60 tokens per second.
// It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	idle    time.Duration // buckets unused this long are dropped
	stop    chan struct{}
	once    sync.Once
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// New creates a limiter allowing perMinute requests per key with the given
// burst. A burst below 1 is raised to 1.
func New(perMinute, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	l := &Limiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(float64(perMinute) / 60.0),
		burst:   burst,
		idle:    3 * time.Minute,
		stop:    make(chan struct{}),
	}
	go l.cleanupLoop(time.Minute)
	return l
}

// Allow reports whether a request for key may proceed now.
func (l *Limiter) Allow(key string) bool {
	return l.get(key).Allow()
}

// Remaining returns roughly how many requests key could make right now.
func (l *Limiter) Remaining(key string) int {
	n := int(l.get(key).Tokens())
	if n < 0 {
		return 0
	}
	return n
}

// Close stops the cleanup goroutine.
func (l *Limiter) Close() {
	l.once.Do(func() { close(l.stop) })
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = time.Now()
	return b.lim
}

// cleanupLoop periodically removes idle buckets to prevent memory leaks.
func (l *Limiter) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.mu.Lock()
			cutoff := time.Now().Add(-l.idle)
			for key, b := range l.buckets {
				if b.lastSeen.Before(cutoff) {
					delete(l.buckets, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Key picks the bucket for a request: the authenticated principal when
// present, otherwise the client IP.
func Key(r *http.Request) string {
	if id, ok := authscope.FromRequest(r); ok {
		return "principal:" + id.PrincipalID
	}
	return "ip:" + ClientIP(r)
}

// RemainingHeader reports how many requests the caller's bucket still holds.
const RemainingHeader = "X-RateLimit-Remaining"

// Middleware answers 429 once a key's bucket is empty and otherwise sets
// RemainingHeader. It must run after the identity middleware so
// authenticated callers are keyed by principal.
func Middleware(l *Limiter, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			key := Key(r)
			if !l.Allow(key) {
				if log != nil {
					log.Debug("rate limited", zap.String("key", key), zap.String("path", r.URL.Path))
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(l.limit)))
				respond.Message(w, http.StatusTooManyRequests, "Too many requests")
				return
			}
			w.Header().Set(RemainingHeader, strconv.Itoa(l.Remaining(key)))
			next.ServeHTTP(w, r)
		})
	}
}

func retryAfterSeconds(limit rate.Limit) int {
	if limit <= 0 {
		return 60
	}
	s := int(1/float64(limit) + 0.5)
	if s < 1 {
		return 1
	}
	return s
}

// ClientIP extracts the client IP from an HTTP request.
// It checks X-Forwarded-For and X-Real-IP headers first (for proxied requests),
// then falls back to RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
