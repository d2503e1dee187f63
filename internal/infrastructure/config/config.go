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

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
	Queue QueueConfig
}

// AuthConfig carries the signing secret, the per-purpose token lifetimes,
// and the bcrypt work factor. JWT_SECRET has no default on purpose: the
// token codec refuses to start without it.
type AuthConfig struct {
	JWTSecret       string        `env:"JWT_SECRET"`
	JWTIssuer       string        `env:"JWT_ISSUER,        default=marketplace-api"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL,  default=1h"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL, default=168h"`
	VerifyEmailTTL  time.Duration `env:"VERIFY_EMAIL_TTL,  default=24h"`
	ResetTokenTTL   time.Duration `env:"RESET_TOKEN_TTL,   default=1h"`
	BcryptCost      int           `env:"BCRYPT_COST,       default=12"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=marketplace"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type QueueConfig struct {
	Workers int `env:"NOTIFY_WORKERS, default=8"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
