package authhandlers

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	authdomain "github.com/Black-And-White-Club/scout-bot/app/modules/auth/domain"
	authjwt "github.com/Black-And-White-Club/scout-bot/app/modules/auth/infrastructure/jwt"
	"github.com/Black-And-White-Club/scout-bot/internal/observability/attr"
	"golang.org/x/time/rate"
)

const (
	limiterSweepSize = 500
	limiterIdleAge   = 10 * time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per caller. Authenticated requests are
// keyed by scout ID so a whole team behind one NAT does not share a bucket;
// anonymous requests fall back to the client IP.
type RateLimiter struct {
	mu      sync.Mutex
	callers map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

// NewRateLimiter creates a RateLimiter allowing limit events per second with burst.
func NewRateLimiter(limit rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		callers: make(map[string]*limiterEntry),
		limit:   limit,
		burst:   burst,
		now:     time.Now,
	}
}

// CallerKey identifies the caller of r for rate limiting.
func CallerKey(r *http.Request) string {
	if scout, ok := authdomain.ScoutFromContext(r.Context()); ok && scout.ID != "" {
		return "scout:" + scout.ID
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return "ip:" + ip
}

// Allow reports whether the caller identified by key may proceed. Idle buckets are
// dropped once more than limiterSweepSize callers are tracked.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.callers) > limiterSweepSize {
		cutoff := now.Add(-limiterIdleAge)
		for k, e := range l.callers {
			if e.lastSeen.Before(cutoff) {
				delete(l.callers, k)
			}
		}
	}

	e, ok := l.callers[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.callers[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// RateLimitMiddleware rejects callers that exceed limiter with 429. Mount it after
// AuthMiddleware to key by scout.
func RateLimitMiddleware(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(CallerKey(r)) {
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AuthMiddleware requires a valid bearer token and attaches the scout to the request context.
func AuthMiddleware(provider authjwt.Provider, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := provider.ValidateToken(token)
			if err != nil {
				logger.WarnContext(r.Context(), "Rejected bearer token", attr.Error(err))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := authdomain.WithScout(r.Context(), claims.Scout)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
