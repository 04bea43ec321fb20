package middleware

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

const defaultTrackedClients = 10000

// RateLimiter applies a token bucket per client IP.
// Buckets are kept in an LRU so idle clients are eventually forgotten.
type RateLimiter struct {
	mu       sync.Mutex
	limiters *lru.Cache[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
	trusted  []*net.IPNet
}

// NewRateLimiter creates a limiter allowing rps requests per second with the given burst.
// rps <= 0 disables limiting.
func NewRateLimiter(rps float64, burst, maxClients int) (*RateLimiter, error) {
	if maxClients <= 0 {
		maxClients = defaultTrackedClients
	}
	limiters, err := lru.New[string, *rate.Limiter](maxClients)
	if err != nil {
		return nil, err
	}
	if burst < 1 {
		burst = 1
	}

	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &RateLimiter{
		limiters: limiters,
		limit:    limit,
		burst:    burst,
	}, nil
}

// TrustProxies makes the limiter key on X-Forwarded-For when the request comes
// from one of the given addresses or CIDR ranges. Without trusted proxies the
// header is ignored.
func (l *RateLimiter) TrustProxies(proxies []string) error {
	nets := make([]*net.IPNet, 0, len(proxies))
	for _, p := range proxies {
		if !strings.Contains(p, "/") {
			if ip := net.ParseIP(p); ip != nil && ip.To4() != nil {
				p += "/32"
			} else {
				p += "/128"
			}
		}
		_, ipNet, err := net.ParseCIDR(p)
		if err != nil {
			return fmt.Errorf("invalid trusted proxy %q: %w", p, err)
		}
		nets = append(nets, ipNet)
	}
	l.trusted = nets
	return nil
}

// Allow reports whether the client may make a request now
func (l *RateLimiter) Allow(client string) bool {
	if l.limit == rate.Inf {
		return true
	}

	l.mu.Lock()
	limiter, ok := l.limiters.Get(client)
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters.Add(client, limiter)
	}
	l.mu.Unlock()

	return limiter.Allow()
}

// Middleware rejects requests over the limit with 429
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(l.clientIP(r)) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP is the remote address, or the rightmost X-Forwarded-For hop not
// added by a trusted proxy when the request arrived through one.
func (l *RateLimiter) clientIP(r *http.Request) string {
	remote := remoteHost(r)
	if !l.isTrusted(remote) {
		return remote
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !l.isTrusted(hop) {
			return hop
		}
	}
	return remote
}

func (l *RateLimiter) isTrusted(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, n := range l.trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
