package utils

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root configuration of every mangashelf binary.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	Metadata MetadataConfig `yaml:"metadata"`
	Import   ImportConfig   `yaml:"import"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"             env:"MANGASHELF_HTTP_ADDR"        env-default:":8080"`
	SyncAddr        string        `yaml:"sync_addr"        env:"MANGASHELF_SYNC_ADDR"        env-default:":7070"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"MANGASHELF_SHUTDOWN_TIMEOUT" env-default:"10s"`
	TrustedProxies  []string      `yaml:"trusted_proxies"  env:"MANGASHELF_TRUSTED_PROXIES"  env-default:"127.0.0.1"`
}

// StoreConfig selects the record store: memory, sqlite or postgres.
type StoreConfig struct {
	Backend     string `yaml:"backend"      env:"MANGASHELF_STORE"        env-default:"sqlite"`
	SQLitePath  string `yaml:"sqlite_path"  env:"MANGASHELF_DB_PATH"`
	PostgresDSN string `yaml:"postgres_dsn" env:"MANGASHELF_POSTGRES_DSN"`
	Seed        bool   `yaml:"seed"         env:"MANGASHELF_SEED"         env-default:"false"`
}

type MetadataConfig struct {
	GoogleBooksURL string        `yaml:"google_books_url" env:"MANGASHELF_GOOGLE_BOOKS_URL" env-default:"https://www.googleapis.com/books/v1"`
	OpenLibraryURL string        `yaml:"open_library_url" env:"MANGASHELF_OPEN_LIBRARY_URL" env-default:"https://openlibrary.org"`
	Timeout        time.Duration `yaml:"timeout"          env:"MANGASHELF_METADATA_TIMEOUT" env-default:"10s"`
	Cache          string        `yaml:"cache"            env:"MANGASHELF_METADATA_CACHE"   env-default:"memory"`
	CacheTTL       time.Duration `yaml:"cache_ttl"        env:"MANGASHELF_METADATA_TTL"     env-default:"24h"`
	RedisAddr      string        `yaml:"redis_addr"       env:"MANGASHELF_REDIS_ADDR"       env-default:"localhost:6379"`
	RedisPassword  string        `yaml:"redis_password"   env:"MANGASHELF_REDIS_PASSWORD"`
	RedisDB        int           `yaml:"redis_db"         env:"MANGASHELF_REDIS_DB"         env-default:"0"`
}

type ImportConfig struct {
	MaxUploadBytes int64 `yaml:"max_upload_bytes" env:"MANGASHELF_MAX_UPLOAD_BYTES" env-default:"10485760"`
}

type LogConfig struct {
	Level    string `yaml:"level"    env:"MANGASHELF_LOG_LEVEL"    env-default:"info"`
	Encoding string `yaml:"encoding" env:"MANGASHELF_LOG_ENCODING" env-default:"console"`
}

// LoadConfig reads configuration from a YAML file and environment variables.
// The file path comes from CONFIG_PATH (fallback "./config.yaml"); without a
// file, configuration comes from ENV and defaults only.
func LoadConfig() (*Config, error) {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	explicitPath := path != ""
	if !explicitPath {
		path = "./config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate checks cross-field rules and normalizes enum values.
func (c *Config) Validate() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	switch c.Store.Backend {
	case "memory", "sqlite":
	case "postgres":
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("store.postgres_dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("store.backend must be memory, sqlite or postgres (got %q)", c.Store.Backend)
	}

	c.Metadata.Cache = strings.ToLower(strings.TrimSpace(c.Metadata.Cache))
	switch c.Metadata.Cache {
	case "memory", "redis", "none":
	default:
		return fmt.Errorf("metadata.cache must be memory, redis or none (got %q)", c.Metadata.Cache)
	}
	if c.Metadata.Timeout <= 0 {
		return fmt.Errorf("metadata.timeout must be > 0 (got %s)", c.Metadata.Timeout)
	}
	if c.Import.MaxUploadBytes <= 0 {
		return fmt.Errorf("import.max_upload_bytes must be > 0 (got %d)", c.Import.MaxUploadBytes)
	}
	return nil
}
