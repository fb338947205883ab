package httpx

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig defines per-client request limiting parameters.
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

// SignInLimit is the profile for credential endpoints: tight enough to make
// online password guessing useless, loose enough for a fumbled password.
var SignInLimit = RateLimitConfig{
	RequestsPerWindow: 5,
	Window:            time.Minute,
	Burst:             5,
}

// ModerateLimit is the profile for authenticated session operations.
var ModerateLimit = RateLimitConfig{
	RequestsPerWindow: 60,
	Window:            time.Minute,
	Burst:             20,
}

// RateLimit enforces cfg per remote IP. Entries idle for an hour are
// dropped by a background sweep so the limiter map cannot grow unbounded.
func RateLimit(cfg RateLimitConfig) Middleware {
	rl := &ipRateLimiter{
		cfg:     cfg,
		clients: make(map[string]*clientLimiter),
	}
	go rl.sweep()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.allow(clientIP(r)) {
				w.Header().Set("Retry-After", "60")
				WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type ipRateLimiter struct {
	cfg     RateLimitConfig
	mu      sync.Mutex
	clients map[string]*clientLimiter
}

func (rl *ipRateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[ip]
	if !ok {
		perSecond := rate.Limit(float64(rl.cfg.RequestsPerWindow) / rl.cfg.Window.Seconds())
		c = &clientLimiter{limiter: rate.NewLimiter(perSecond, rl.cfg.Burst)}
		rl.clients[ip] = c
	}
	c.lastSeen = time.Now()
	return c.limiter.Allow()
}

func (rl *ipRateLimiter) sweep() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-time.Hour)
		rl.mu.Lock()
		for ip, c := range rl.clients {
			if c.lastSeen.Before(cutoff) {
				delete(rl.clients, ip)
			}
		}
		rl.mu.Unlock()
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
