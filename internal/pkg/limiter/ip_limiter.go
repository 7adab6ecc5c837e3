/*
Package limiter provides request rate limiting keyed by client IP address or by account.

It utilizes the Token Bucket algorithm (rate.Limiter) to control the request frequency
for each key and includes a cleanup goroutine to periodically remove
inactive limiters, preventing memory leaks.
*/
package limiter

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"twoogle/internal/pkg/errs"
	"twoogle/internal/pkg/logx"
	"twoogle/internal/pkg/resp"
)

const cleanupInterval = 3 * time.Minute

// KeyFunc derives the bucket key of a request.
type KeyFunc func(r *http.Request) string

// IPRateLimiter implements a concurrency-safe rate limiter with one token bucket per key.
type IPRateLimiter struct {
	// mu is used to protect concurrent access to the limits map.
	mu sync.RWMutex

	// limits stores the map from key to the *rate.Limiter instance.
	limits map[string]*rate.Limiter

	// r is the rate (rate.Limit) of the limiter, defining the number of events allowed per second.
	r rate.Limit

	// b is the burst size (token bucket size) of the limiter, defining the maximum burst of requests allowed.
	b int

	keyFunc KeyFunc
}

// NewIPRateLimiter creates a limiter keyed by client IP. The cleanup goroutine
// stops when ctx is done.
func NewIPRateLimiter(ctx context.Context, r rate.Limit, b int) *IPRateLimiter {
	return NewKeyedRateLimiter(ctx, r, b, ClientIP)
}

// NewKeyedRateLimiter creates a limiter whose buckets are chosen by keyFunc.
func NewKeyedRateLimiter(ctx context.Context, r rate.Limit, b int, keyFunc KeyFunc) *IPRateLimiter {
	i := &IPRateLimiter{
		limits:  make(map[string]*rate.Limiter),
		r:       r,
		b:       b,
		keyFunc: keyFunc,
	}

	go i.cleanUpVisitors(ctx)

	return i
}

// ClientIP is the default KeyFunc.
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}

	if ip == "" {
		ip = "unknown_ip"
	}
	return ip
}

// GetLimiter retrieves the rate limiter corresponding to the given key.
// If the limiter for that key does not exist, a new one is created and stored in the map.
// It uses a Double-Checked Locking pattern to ensure concurrent-safe creation of new limiters.
func (i *IPRateLimiter) GetLimiter(key string) *rate.Limiter {
	i.mu.RLock()
	limiter, exists := i.limits[key]
	i.mu.RUnlock()

	if !exists {
		i.mu.Lock()
		limiter, exists = i.limits[key]
		if !exists {
			limiter = rate.NewLimiter(i.r, i.b)
			i.limits[key] = limiter
		}
		i.mu.Unlock()
	}

	return limiter
}

// cleanUpVisitors periodically removes limiters whose token bucket is full again.
func (i *IPRateLimiter) cleanUpVisitors(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, remaining := i.sweep(now)
			logx.Debug("Rate limiter cleanup finished.", "removed", removed, "remaining", remaining)
		}
	}
}

func (i *IPRateLimiter) sweep(now time.Time) (removed, remaining int) {
	i.mu.Lock()
	defer i.mu.Unlock()

	for key, limiter := range i.limits {
		if limiter.TokensAt(now) >= float64(limiter.Burst()) {
			delete(i.limits, key)
			removed++
		}
	}
	return removed, len(i.limits)
}

// Middleware returns an HTTP middleware that performs rate limiting checks on incoming requests.
// If a request exceeds the limit, it responds with a 429 Too Many Requests error.
func (i *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !i.GetLimiter(i.keyFunc(r)).Allow() {
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		next.ServeHTTP(w, r)
	})
}
