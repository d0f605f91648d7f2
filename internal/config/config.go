package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const minSecretKeyLength = 32

var ErrInvalidConfig = errors.New("invalid config")

var supportedAlgorithms = map[string]struct{}{
	"HS256": {},
	"HS384": {},
	"HS512": {},
}

type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Postgres PostgresConfig
	Auth     AuthConfig
	Log      LogConfig
	Sentry   SentryConfig
}

type ServerConfig struct {
	Port                 string        `env:"PORT" envDefault:"8000"`
	GinMode              string        `env:"GIN_MODE" envDefault:"release"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	CORSAllowedOrigins   []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	CORSAllowCredentials bool          `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`
}

// StoreConfig - selects the persistence backend. "memory" is for local runs only.
type StoreConfig struct {
	Driver string `env:"STORE_DRIVER" envDefault:"postgres"`
}

type PostgresConfig struct {
	DatabaseURL string `env:"DATABASE_URL"`
	Host        string `env:"PGHOST" envDefault:"localhost"`
	Port        string `env:"PGPORT" envDefault:"5432"`
	User        string `env:"PGUSER"`
	Password    string `env:"PGPASSWORD"`
	Database    string `env:"PGDATABASE"`
	SSLMode     string `env:"PGSSLMODE" envDefault:"disable"`
	MaxConns    int32  `env:"DB_MAX_CONNS" envDefault:"10"`
}

// AuthConfig holds the process-wide signing and hashing settings.
// It is read once at startup and never mutated afterwards.
type AuthConfig struct {
	SecretKey                string `env:"SECRET_KEY"`
	Algorithm                string `env:"ALGORITHM" envDefault:"HS256"`
	AccessTokenExpireMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"30"`
	Argon2MemoryKiB          uint32 `env:"ARGON2_MEMORY_KIB" envDefault:"65536"`
	Argon2Iterations         uint32 `env:"ARGON2_ITERATIONS" envDefault:"3"`
	Argon2Parallelism        uint8  `env:"ARGON2_PARALLELISM" envDefault:"4"`
	HashConcurrency          int    `env:"HASH_CONCURRENCY" envDefault:"0"`
}

func (c AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN"`
	Environment string `env:"APP_ENV" envDefault:"development"`
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads the configuration from the given variables instead of the
// process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg.Auth.Algorithm = strings.ToUpper(strings.TrimSpace(cfg.Auth.Algorithm))
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	switch c.Store.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("%w: unknown STORE_DRIVER %q", ErrInvalidConfig, c.Store.Driver)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: SHUTDOWN_TIMEOUT must be positive", ErrInvalidConfig)
	}
	return nil
}

func (c AuthConfig) Validate() error {
	if strings.TrimSpace(c.SecretKey) == "" {
		return fmt.Errorf("%w: SECRET_KEY is required", ErrInvalidConfig)
	}
	if len(c.SecretKey) < minSecretKeyLength {
		return fmt.Errorf("%w: SECRET_KEY must be at least %d bytes", ErrInvalidConfig, minSecretKeyLength)
	}
	if _, ok := supportedAlgorithms[c.Algorithm]; !ok {
		return fmt.Errorf("%w: unsupported ALGORITHM %q", ErrInvalidConfig, c.Algorithm)
	}
	if c.AccessTokenExpireMinutes <= 0 {
		return fmt.Errorf("%w: ACCESS_TOKEN_EXPIRE_MINUTES must be positive", ErrInvalidConfig)
	}
	if c.Argon2MemoryKiB < 8*uint32(c.Argon2Parallelism) || c.Argon2Iterations == 0 || c.Argon2Parallelism == 0 {
		return fmt.Errorf("%w: invalid argon2 parameters", ErrInvalidConfig)
	}
	if c.HashConcurrency < 0 {
		return fmt.Errorf("%w: HASH_CONCURRENCY must not be negative", ErrInvalidConfig)
	}
	return nil
}
