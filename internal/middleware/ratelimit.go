package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"mini-pos/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Rule is a fixed-window request budget for one route group.
type Rule struct {
	Name   string
	Limit  int
	Window time.Duration
}

// Route budgets per client IP.
var (
	LoginLimit        = Rule{Name: "login", Limit: 10, Window: time.Minute}
	CheckoutLimit     = Rule{Name: "checkout", Limit: 100, Window: time.Hour}
	CartLimit         = Rule{Name: "cart", Limit: 500, Window: 24 * time.Hour}
	CatalogWriteLimit = Rule{Name: "catalog-write", Limit: 50, Window: time.Hour}
	DeleteLimit       = Rule{Name: "delete", Limit: 20, Window: time.Hour}
	ReportLimit       = Rule{Name: "report", Limit: 50, Window: 24 * time.Hour}
	StockLimit        = Rule{Name: "stock", Limit: 100, Window: time.Hour}
	RegisterLimit     = Rule{Name: "register", Limit: 50, Window: time.Hour}
)

// RateLimiter counts requests per key in fixed windows stored in Redis.
type RateLimiter struct {
	client *redis.Client
	now    func() time.Time
	logger zerolog.Logger
}

// NewRateLimiter creates a Redis-backed rate limiter.
func NewRateLimiter(client *redis.Client, logger zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		now:    time.Now,
		logger: logger.With().Str("component", "rate-limiter").Logger(),
	}
}

func (l *RateLimiter) key(rule Rule, client string) string {
	window := l.now().Unix() / int64(rule.Window/time.Second)
	return fmt.Sprintf("ratelimit:%s:%s:%d", rule.Name, client, window)
}

// Allow records one request for client under rule and reports whether it is
// within budget. The window key is created with its expiry and incremented in
// one MULTI block, so a counter never outlives its window.
func (l *RateLimiter) Allow(ctx context.Context, rule Rule, client string) (bool, error) {
	key := l.key(rule, client)

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, rule.Window)
		incr = pipe.Incr(ctx, key)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to count request: %w", err)
	}

	return incr.Val() <= int64(rule.Limit), nil
}

// Limit rejects requests over rule's budget with 429. Redis failures let the
// request through.
func (l *RateLimiter) Limit(rule Rule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := clientIP(r)

			allowed, err := l.Allow(r.Context(), rule, client)
			if err != nil {
				l.logger.Warn().Err(err).Str("rule", rule.Name).Msg("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				l.logger.Warn().
					Str("rule", rule.Name).
					Str("client", client).
					Msg("rate limit exceeded")
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(rule.Window.Seconds())))
				writeError(w, http.StatusTooManyRequests, model.ErrCodeRateLimited, "Too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
