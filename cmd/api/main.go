// Command api runs the blog REST API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"

	"github.com/quillpost/blog-api/internal/api"
	"github.com/quillpost/blog-api/internal/api/handler"
	"github.com/quillpost/blog-api/internal/api/metrics"
	"github.com/quillpost/blog-api/internal/core/ports"
	"github.com/quillpost/blog-api/internal/core/service"
	"github.com/quillpost/blog-api/internal/infrastructure/db/memory"
	"github.com/quillpost/blog-api/internal/infrastructure/db/mongo"
	"github.com/quillpost/blog-api/internal/infrastructure/db/redis"
	"github.com/quillpost/blog-api/internal/infrastructure/ratelimit"
	"github.com/quillpost/blog-api/internal/infrastructure/security"
	"github.com/quillpost/blog-api/internal/infrastructure/server"
	"github.com/quillpost/blog-api/internal/pkg/config"
	"github.com/quillpost/blog-api/pkg/logger"
)

const serviceName = "blog-api"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, envconfig.OsLookuper())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})

	if err := run(ctx, cfg); err != nil {
		log := logger.Get()
		log.Fatal().Err(err).Msg("api stopped")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	var (
		shutdowns []func(context.Context) error
		names     []string
		checks    []handler.HealthCheck
		started   bool
	)
	onShutdown := func(name string, fn func(context.Context) error) {
		names = append(names, name)
		shutdowns = append(shutdowns, fn)
	}
	// Until the server owns them, clients opened here are released on error.
	defer func() {
		if started {
			return
		}
		closeAll(cfg.ShutdownTimeout, log, names, shutdowns)
	}()

	// --- Store ---
	var store ports.Store
	switch cfg.Store.Backend {
	case "mongo":
		client, db, err := mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  serviceName,
		})
		if err != nil {
			return fmt.Errorf("connect mongo: %w", err)
		}
		onShutdown("mongo", client.Disconnect)

		ms := mongo.NewStore(db)
		if err := ms.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("mongo indexes: %w", err)
		}
		checks = append(checks, handler.HealthCheck{Name: "mongodb", Check: ms.Ping})
		store = ms
		log.Info().Str("database", cfg.Mongo.Database).Msg("using mongo store")
	default:
		mem := memory.New()
		checks = append(checks, handler.HealthCheck{Name: "memory", Check: mem.Ping})
		store = mem
		log.Info().Msg("using in-memory store")
	}

	// --- Rate limiter ---
	var limiter ports.RateLimiter
	if cfg.RateLimit.Enabled {
		switch cfg.RateLimit.Backend {
		case "redis":
			client, err := redis.Connect(ctx, redis.Config{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			if err != nil {
				return fmt.Errorf("connect redis: %w", err)
			}
			onShutdown("redis", func(context.Context) error { return client.Close() })
			checks = append(checks, redisCheck(client))
			limiter = redis.NewFixedWindow(client, cfg.RateLimit.Max, cfg.RateLimit.Window)
		default:
			fw := ratelimit.NewFixedWindow(cfg.RateLimit.Max, cfg.RateLimit.Window)
			fw.StartJanitor(ctx, cfg.RateLimit.Cleanup)
			limiter = fw
		}
		log.Info().
			Str("backend", cfg.RateLimit.Backend).
			Int("max", cfg.RateLimit.Max).
			Dur("window", cfg.RateLimit.Window).
			Msg("rate limiting enabled")
	}

	// --- Security ---
	var hasher ports.PasswordHasher
	if cfg.Auth.HashAlgorithm == "argon2id" {
		hasher = security.NewArgon2Hasher(security.DefaultArgon2Params)
	} else {
		hasher = security.NewBcryptHasher(cfg.Auth.BcryptCost)
	}
	tokens := security.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTExpire, security.WithIssuer(cfg.Auth.JWTIssuer))

	// --- Services ---
	pagination := service.Pagination{
		DefaultLimit: cfg.Pagination.DefaultLimit,
		MaxLimit:     cfg.Pagination.MaxLimit,
	}

	e := api.NewRouter(api.Deps{
		AuthService:    service.NewAuthService(store, hasher, tokens, log),
		UserService:    service.NewUserService(store),
		PostService:    service.NewPostService(store, pagination, log),
		CommentService: service.NewCommentService(store, store, log),
		Tokens:         tokens,
		Limiter:        limiter,
		HealthChecks:   checks,
		Metrics:        metrics.New(prometheus.DefaultRegisterer),
		Registerer:     prometheus.DefaultRegisterer,
		Gatherer:       prometheus.DefaultGatherer,
		Logger:         log,
		Development:    cfg.IsDevelopment(),
		TrustProxy:     cfg.TrustProxy,
	})

	srv := server.New(e, cfg.Port, cfg.ShutdownTimeout, log)
	for i, fn := range shutdowns {
		srv.OnShutdown(names[i], fn)
	}
	started = true

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting blog api")
	return srv.Run(ctx)
}

// closeAll runs the shutdown hooks newest first.
func closeAll(timeout time.Duration, log zerolog.Logger, names []string, fns []func(context.Context) error) {
	if len(fns) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	for i := len(fns) - 1; i >= 0; i-- {
		if err := fns[i](ctx); err != nil {
			log.Error().Err(err).Str("resource", names[i]).Msg("close failed")
		}
	}
}

func redisCheck(client *goredis.Client) handler.HealthCheck {
	return handler.HealthCheck{
		Name:  "redis",
		Check: func(ctx context.Context) error { return client.Ping(ctx).Err() },
	}
}
