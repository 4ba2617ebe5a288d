package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/quillpost/blog-api/internal/api/handler"
	"github.com/quillpost/blog-api/internal/api/metrics"
	"github.com/quillpost/blog-api/internal/api/middleware"
	"github.com/quillpost/blog-api/internal/core/ports"
)

// Deps is everything NewRouter wires together.
type Deps struct {
	AuthService    ports.AuthService
	UserService    ports.UserService
	PostService    ports.PostService
	CommentService ports.CommentService
	Tokens         ports.TokenIssuer

	// Limiter guards every /api route. Nil disables rate limiting.
	Limiter      ports.RateLimiter
	HealthChecks []handler.HealthCheck

	Metrics    *metrics.Metrics
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	Logger      zerolog.Logger
	Development bool
	// TrustProxy keys clients by X-Forwarded-For instead of the peer address.
	TrustProxy bool
}

// NewRouter builds the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger, d.Development)

	if d.TrustProxy {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	} else {
		e.IPExtractor = echo.ExtractIPDirect()
	}
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.RecoverWithConfig(recoverConfig()))
	e.Use(echomiddleware.RequestID())
	// Outside the request logger, which renders errors, so the recorded
	// status is the one the client saw.
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "blog",
		Subsystem:  "http",
		Registerer: d.Registerer,
		Skipper:    skipOperational,
	}))
	e.Use(requestLogger(d.Logger))

	// --- Operational endpoints (not rate limited) ---
	health := handler.NewHealthHandler(d.HealthChecks...)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))

	// --- API ---
	api := e.Group("/api")
	if d.Limiter != nil {
		api.Use(middleware.RateLimit(d.Limiter, middleware.RateLimitOptions{
			Logger:  d.Logger,
			Metrics: d.Metrics,
		}))
	}
	requireAuth := middleware.Auth(d.Tokens)

	authHandler := handler.NewAuthHandler(d.AuthService, d.Metrics)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	userHandler := handler.NewUserHandler(d.UserService)
	api.GET("/users/me", userHandler.Me, requireAuth)

	postHandler := handler.NewPostHandler(d.PostService, d.Metrics)
	api.GET("/posts", postHandler.List)
	api.POST("/posts", postHandler.Create, requireAuth)

	commentHandler := handler.NewCommentHandler(d.CommentService, d.Metrics)
	api.POST("/comments", commentHandler.Create, requireAuth)

	return e
}

func skipOperational(c echo.Context) bool {
	p := c.Request().URL.Path
	return p == "/metrics" || strings.HasPrefix(p, "/health")
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			switch {
			case v.Status >= http.StatusInternalServerError:
				event = log.Error().Err(v.Error)
			case v.Status >= http.StatusBadRequest:
				event = log.Warn()
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
