package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/quillpost/blog-api/internal/api/metrics"
	"github.com/quillpost/blog-api/internal/core/domain"
	"github.com/quillpost/blog-api/internal/core/ports"
)

const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
	HeaderRetryAfter         = "Retry-After"

	unknownClient = "unknown"
)

type RateLimitOptions struct {
	Logger  zerolog.Logger
	Metrics *metrics.Metrics
	// Now defaults to time.Now.
	Now func() time.Time
}

// RateLimit admits or rejects each request before any handler runs. Clients
// are keyed by c.RealIP(), so the echo IPExtractor decides whether proxy
// headers are trusted. A limiter backend failure admits the request.
func RateLimit(limiter ports.RateLimiter, opts RateLimitOptions) echo.MiddlewareFunc {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()
			if key == "" {
				key = unknownClient
			}

			decision, err := limiter.Allow(c.Request().Context(), key)
			if err != nil {
				opts.Logger.Warn().Err(err).Str("client", key).Msg("rate limiter unavailable, admitting request")
				return next(c)
			}

			h := c.Response().Header()
			h.Set(HeaderRateLimitLimit, strconv.Itoa(decision.Limit))
			h.Set(HeaderRateLimitRemaining, strconv.Itoa(decision.Remaining))
			h.Set(HeaderRateLimitReset, strconv.FormatInt(decision.ResetAt.Unix(), 10))

			if !decision.Allowed {
				retry := decision.RetryAfter(opts.Now())
				h.Set(HeaderRetryAfter, strconv.Itoa(int(math.Ceil(retry.Seconds()))))
				opts.Metrics.RateLimited()
				opts.Logger.Debug().Str("client", key).Msg("rate limit exceeded")
				return domain.ErrRateLimited
			}
			return next(c)
		}
	}
}
