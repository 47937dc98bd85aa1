package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth    AuthConfig
	Session SessionConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type AuthConfig struct {
	// HashIterations and HashDigest apply to newly stored passwords.
	// Existing records keep the count and digest they were hashed with
	// and verify under those, so changing either is safe at any time.
	HashIterations int    `env:"HASH_ITERATIONS, default=100000"`
	HashDigest     string `env:"HASH_DIGEST,     default=sha256"`
	// LoginAttemptsPerMinute throttles authentication per user key.
	LoginAttemptsPerMinute float64 `env:"LOGIN_ATTEMPTS_PER_MINUTE, default=10"`
	LoginBurst             int     `env:"LOGIN_BURST,               default=5"`
}

type SessionConfig struct {
	TTL              time.Duration `env:"SESSION_TTL,       default=24h"`
	DefaultLocale    string        `env:"DEFAULT_LOCALE,    default=en"`
	SupportedLocales []string      `env:"SUPPORTED_LOCALES, default=en,ja,de"`
	CookieName       string        `env:"SESSION_COOKIE,    default=gatekeeper_sid"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=gatekeeper"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if cfg.Auth.HashIterations < 1 {
		return nil, fmt.Errorf("HASH_ITERATIONS must be >= 1, got %d", cfg.Auth.HashIterations)
	}
	return &cfg, nil
}
