package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	// DevJWTSecret is only accepted when Env is development.
	DevJWTSecret = "replace_me"
)

type Config struct {
	Port            string        `env:"PORT,             default=8080"`
	Env             string        `env:"ENV,              default=development"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	TrustProxy      bool          `env:"TRUST_PROXY,      default=false"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	Auth       AuthConfig
	Store      StoreConfig
	Mongo      MongoConfig
	Redis      RedisConfig
	RateLimit  RateLimitConfig
	Pagination PaginationConfig
}

type AuthConfig struct {
	JWTSecret     string        `env:"JWT_SECRET"`
	JWTExpire     time.Duration `env:"JWT_EXPIRE,     default=24h"`
	JWTIssuer     string        `env:"JWT_ISSUER,     default=blog-api"`
	HashAlgorithm string        `env:"HASH_ALGORITHM, default=bcrypt"`
	BcryptCost    int           `env:"BCRYPT_COST,    default=10"`
}

type StoreConfig struct {
	Backend string `env:"STORE_BACKEND, default=memory"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=blog"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type RateLimitConfig struct {
	Enabled bool          `env:"RATE_LIMIT_ENABLED, default=true"`
	Backend string        `env:"RATE_LIMIT_BACKEND, default=memory"`
	Window  time.Duration `env:"RATE_LIMIT_WINDOW,  default=60s"`
	Max     int           `env:"RATE_LIMIT_MAX,     default=60"`
	Cleanup time.Duration `env:"RATE_LIMIT_CLEANUP, default=5m"`
}

type PaginationConfig struct {
	DefaultLimit int `env:"PAGINATION_DEFAULT_LIMIT, default=10"`
	MaxLimit     int `env:"PAGINATION_MAX_LIMIT,     default=100"`
}

// Load reads the configuration through l (envconfig.OsLookuper in main, a
// MapLookuper in tests), applies the development secret fallback and
// validates the result.
func Load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if cfg.Auth.JWTSecret == "" && cfg.IsDevelopment() {
		cfg.Auth.JWTSecret = DevJWTSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool { return c.Env == EnvDevelopment }

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required outside development"))
	}
	if !c.IsDevelopment() && c.Auth.JWTSecret == DevJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be changed outside development"))
	}
	if c.Auth.JWTExpire <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRE must be positive"))
	}
	switch c.Auth.HashAlgorithm {
	case "bcrypt", "argon2id":
	default:
		errs = append(errs, fmt.Errorf("HASH_ALGORITHM %q is not one of bcrypt, argon2id", c.Auth.HashAlgorithm))
	}
	switch c.Store.Backend {
	case "memory", "mongo":
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND %q is not one of memory, mongo", c.Store.Backend))
	}
	switch c.RateLimit.Backend {
	case "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("RATE_LIMIT_BACKEND %q is not one of memory, redis", c.RateLimit.Backend))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
	}
	if c.RateLimit.Max <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX must be positive"))
	}
	if c.Pagination.DefaultLimit <= 0 || c.Pagination.MaxLimit <= 0 {
		errs = append(errs, errors.New("pagination limits must be positive"))
	} else if c.Pagination.DefaultLimit > c.Pagination.MaxLimit {
		errs = append(errs, errors.New("PAGINATION_DEFAULT_LIMIT must not exceed PAGINATION_MAX_LIMIT"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
