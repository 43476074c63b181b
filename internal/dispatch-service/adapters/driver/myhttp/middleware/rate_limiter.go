package middleware

import (
	"fmt"
	"net/http"
	"time"

	"instantfix/internal/dispatch-service/adapters/driver/myhttp/handle"
	"instantfix/internal/mylogger"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window counter in redis keyed per user, shared
// across stateless instances. It guards request creation: one customer
// hammering intake must not flood every nearby worker's match feed.
type RateLimiter struct {
	rdb    *redis.Client
	log    mylogger.Logger
	prefix string
	limit  int
	window time.Duration
}

func NewRateLimiter(rdb *redis.Client, log mylogger.Logger, prefix string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		rdb:    rdb,
		log:    log,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

func (rl *RateLimiter) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := rl.log.Action("RateLimiter")

		userId := r.Header.Get("X-UserId")
		if userId == "" {
			// auth runs before us; an empty id means a wiring mistake
			handle.JsonError(w, http.StatusUnauthorized, fmt.Errorf("missing actor identity"))
			return
		}

		key := fmt.Sprintf("%s:%s", rl.prefix, userId)
		ctx := r.Context()

		count, err := rl.rdb.Incr(ctx, key).Result()
		if err != nil {
			// limiter outage must not take intake down with it
			log.Error("rate limiter unavailable, letting request through", err)
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 {
			rl.rdb.Expire(ctx, key, rl.window)
		}

		if count > int64(rl.limit) {
			log.Warn("rate limit exceeded", "user_id", userId, "count", count)
			handle.JsonError(w, http.StatusTooManyRequests,
				fmt.Errorf("too many service creation attempts, try again later"))
			return
		}

		next.ServeHTTP(w, r)
	})
}
