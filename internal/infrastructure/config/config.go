package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
)

const (
	StoreMongo    = "mongo"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"

	SessionBackendRedis = "redis"
	SessionBackendStore = "store"
)

// CookiePath scopes the session cookie. Every authenticated route must be
// mounted at or below it or clients never send the cookie back.
const CookiePath = "/api"

type Config struct {
	Port     string `env:"PORT,      default=8000"`
	Env      string `env:"ENV,       default=development" validate:"oneof=development production test"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	BasePath string `env:"HTTP_BASE_PATH, default=/api"`

	Auth    AuthConfig
	Session SessionConfig
	Store   StoreConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	SQL     SQLConfig
}

// AuthConfig names the bootstrap admin and the enabled authentication modes.
type AuthConfig struct {
	BootstrapUsername string `env:"BOOTSTRAP_USERNAME"`
	BootstrapPassword string `env:"BOOTSTRAP_PASSWORD"`
	BasicAuth         bool   `env:"BASIC_AUTH,      default=false"`
	ProxyAuth         bool   `env:"PROXY_AUTH,      default=false"`
	ProxyAuthSecret   string `env:"PROXY_AUTH_SECRET"`
	PasswordDigest    string `env:"PASSWORD_DIGEST, default=bcrypt" validate:"oneof=bcrypt sha256"`
}

type SessionConfig struct {
	// TTL of zero issues sessions that never expire.
	TTL           time.Duration `env:"SESSION_TTL,            default=0s"  validate:"gte=0"`
	CookieSecure  bool          `env:"SESSION_COOKIE_SECURE,  default=false"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL, default=10m" validate:"gt=0"`
	Backend       string        `env:"SESSION_BACKEND,        default=store" validate:"oneof=redis store"`
}

type StoreConfig struct {
	Driver string `env:"STORE_DRIVER, default=sqlite" validate:"oneof=mongo sqlite postgres"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=podfetch"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0" validate:"gte=0"`
}

type SQLConfig struct {
	DSN string `env:"SQL_DSN, default=podfetch.db"`
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration from l and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and the cross-field rules envconfig
// cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	var errs []error
	if c.Auth.BootstrapUsername != "" && c.Auth.BootstrapPassword == "" {
		errs = append(errs, errors.New("BOOTSTRAP_PASSWORD is required when BOOTSTRAP_USERNAME is set"))
	}
	if c.Auth.BootstrapPassword != "" && c.Auth.BootstrapUsername == "" {
		errs = append(errs, errors.New("BOOTSTRAP_USERNAME is required when BOOTSTRAP_PASSWORD is set"))
	}
	if c.Auth.BasicAuth && c.Auth.ProxyAuth {
		errs = append(errs, errors.New("BASIC_AUTH and PROXY_AUTH are mutually exclusive"))
	}
	if !WithinCookiePath(c.BasePath) {
		errs = append(errs, fmt.Errorf("HTTP_BASE_PATH %q must be %s or below it", c.BasePath, CookiePath))
	}
	if c.Store.Driver != StoreMongo && c.SQL.DSN == "" {
		errs = append(errs, errors.New("SQL_DSN is required for SQL store drivers"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// WithinCookiePath reports whether routes mounted at base receive the session
// cookie.
func WithinCookiePath(base string) bool {
	return base == CookiePath || strings.HasPrefix(base, CookiePath+"/")
}

// Pretty reports whether console logging should be used.
func (c *Config) Pretty() bool {
	return c.Env == "development"
}
