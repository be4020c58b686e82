// Package config loads process configuration from the environment.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Storage backends for the client session.
const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// ServerConfig configures the auth backend.
type ServerConfig struct {
	Port      string        `env:"PORT,       default=8000"`
	Env       string        `env:"ENV,        default=development"`
	JWTSecret string        `env:"JWT_SECRET, required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,  default=24h"`
	LogLevel  string        `env:"LOG_LEVEL,  default=info"`
	LogPretty bool          `env:"LOG_PRETTY, default=false"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=kisaanconnect"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// ClientConfig configures the kisaan CLI.
type ClientConfig struct {
	APIURL      string        `env:"KISAAN_API_URL,      default=http://localhost:8000/auth"`
	HTTPTimeout time.Duration `env:"KISAAN_HTTP_TIMEOUT, default=15s"`
	Storage     string        `env:"KISAAN_STORAGE,      default=file"`
	SessionFile string        `env:"KISAAN_SESSION_FILE"`
	Watch       bool          `env:"KISAAN_WATCH,        default=true"`
	LogLevel    string        `env:"LOG_LEVEL,           default=warn"`
	LogPretty   bool          `env:"LOG_PRETTY,          default=true"`

	Redis RedisConfig
}

// LoadServer reads ServerConfig using go-envconfig.
func LoadServer(ctx context.Context) (*ServerConfig, error) {
	return LoadServerFrom(ctx, envconfig.OsLookuper())
}

// LoadServerFrom reads ServerConfig from l.
func LoadServerFrom(ctx context.Context, l envconfig.Lookuper) (*ServerConfig, error) {
	var cfg ServerConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// LoadClient reads ClientConfig using go-envconfig and fills in the
// default session file location.
func LoadClient(ctx context.Context) (*ClientConfig, error) {
	return LoadClientFrom(ctx, envconfig.OsLookuper())
}

// LoadClientFrom reads ClientConfig from l.
func LoadClientFrom(ctx context.Context, l envconfig.Lookuper) (*ClientConfig, error) {
	var cfg ClientConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	switch cfg.Storage {
	case StorageFile, StorageRedis, StorageMemory:
	default:
		return nil, fmt.Errorf("config: KISAAN_STORAGE must be file, redis or memory, got %q", cfg.Storage)
	}

	if cfg.SessionFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir = os.TempDir()
		}
		cfg.SessionFile = filepath.Join(dir, "kisaanconnect", "session.json")
	}
	return &cfg, nil
}
