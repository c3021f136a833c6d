package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tarunagarwal1981/travelhub-backend/api/responses"
	pkgerrors "github.com/tarunagarwal1981/travelhub-backend/pkg/errors"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/logger"
)

// RateLimiterStore counts requests per scope within a fixed window.
type RateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RateLimitPolicy caps how many requests a user may make per fixed window.
type RateLimitPolicy struct {
	Scope  string
	Window time.Duration
	Limit  int
}

// NewRateLimitPolicy builds a policy, applying sane fallbacks.
func NewRateLimitPolicy(scope string, window time.Duration, limit int) RateLimitPolicy {
	if window <= 0 {
		window = time.Minute
	}
	if limit <= 0 {
		limit = 30
	}
	return RateLimitPolicy{Scope: scope, Window: window, Limit: limit}
}

// RateLimit applies a fixed-window per-user limit backed by the store. When
// the limiter itself fails the request is allowed through; throttling is not
// worth an outage.
func RateLimit(policy RateLimitPolicy, store RateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store == nil {
				next.ServeHTTP(w, r)
				return
			}

			userID := UserIDFromContext(r.Context())
			if userID == "" {
				userID = r.RemoteAddr
			}
			scope := fmt.Sprintf("%s:%s", policy.Scope, userID)

			allowed, count, err := store.FixedWindowAllow(r.Context(), scope, int64(policy.Limit), policy.Window)
			if err != nil {
				if logg != nil {
					logg.Warn(logg.WithField(r.Context(), "scope", scope), "rate limiter unavailable; allowing request")
				}
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				if logg != nil {
					ctx := logg.WithFields(r.Context(), map[string]any{
						"scope": scope,
						"count": count,
						"limit": policy.Limit,
					})
					logg.Warn(ctx, "rate limit exceeded")
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
