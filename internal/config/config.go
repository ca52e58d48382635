// Package config loads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

// Cache drivers.
const (
	CacheRedis  = "redis"
	CacheMemory = "memory"
)

// Config is the full service configuration.
type Config struct {
	Env     string
	AppName string
	Port    int

	StoreDriver string
	DatabaseDSN string
	Mongo       MongoConfig

	CacheDriver   string
	Redis         RedisConfig
	CacheTTL      time.Duration
	CacheCapacity int

	RateLimitTTL   time.Duration
	RateLimitLimit int

	RabbitMQURL string

	LogLevel    string
	LogEncoding string
}

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	Scheme            string
	Host              string
	Port              int
	Database          string
	User              string
	Password          string
	AuthSource        string
	ConnectionTimeout time.Duration
	SocketTimeout     time.Duration
	RetryAttempts     int
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// URI builds the MongoDB connection string. With credentials the port is
// omitted so SRV schemes work.
func (m MongoConfig) URI() string {
	var uri string
	if m.User != "" {
		uri = fmt.Sprintf("%s://%s:%s@%s/%s?retryWrites=true&w=majority",
			m.Scheme, m.User, m.Password, m.Host, m.Database)
	} else {
		uri = fmt.Sprintf("%s://%s:%d/%s?retryWrites=true&w=majority",
			m.Scheme, m.Host, m.Port, m.Database)
	}
	if m.AuthSource != "" {
		uri += "&authSource=" + m.AuthSource
	}
	return uri
}

// Debug reports whether the service runs outside production.
func (c *Config) Debug() bool {
	env := strings.ToLower(c.Env)
	return env != "prod" && env != "production"
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("NODE_ENV", "development")
	v.SetDefault("APP_NAME", "salt-be")
	v.SetDefault("PORT", 3031)

	v.SetDefault("STORE_DRIVER", StoreMongo)
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("MONGODB_URI_SCHEME", "mongodb")
	v.SetDefault("MONGODB_HOST", "127.0.0.1")
	v.SetDefault("MONGODB_PORT", 27017)
	v.SetDefault("MONGODB_DATABASE", "salt")
	v.SetDefault("MONGODB_USER", "")
	v.SetDefault("MONGODB_PASSWORD", "")
	v.SetDefault("MONGODB_AUTHSOURCE", "")
	v.SetDefault("MONGODB_CONNECTION_TIMEOUT", 10000)
	v.SetDefault("MONGODB_SOCKET_TIMEOUT", 10000)
	v.SetDefault("MONGODB_RETRY_ATTEMPTS", 5)

	v.SetDefault("CACHE_DRIVER", CacheRedis)
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "300s")
	v.SetDefault("CACHE_CAPACITY", 10000)

	v.SetDefault("RATE_LIMIT_TTL", "60s")
	v.SetDefault("RATE_LIMIT_LIMIT", 10)

	v.SetDefault("RABBITMQ_URL", "")

	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("LOG_ENCODING", "")
}

// getSeconds reads key as a duration. A bare integer is taken as seconds.
func getSeconds(v *viper.Viper, key string) time.Duration {
	if n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key))); err == nil {
		return time.Duration(n) * time.Second
	}
	return v.GetDuration(key)
}

// Load reads an optional .env file into the process environment and then
// builds the configuration from environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to load .env: %w", err)
	}
	return FromViper(viper.New())
}

// FromViper builds the configuration from v with environment overrides.
func FromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	env := v.GetString("APP_ENV")
	if env == "" {
		env = v.GetString("NODE_ENV")
	}

	cfg := &Config{
		Env:         env,
		AppName:     v.GetString("APP_NAME"),
		Port:        v.GetInt("PORT"),
		StoreDriver: strings.ToLower(v.GetString("STORE_DRIVER")),
		DatabaseDSN: v.GetString("DATABASE_DSN"),
		Mongo: MongoConfig{
			Scheme:            v.GetString("MONGODB_URI_SCHEME"),
			Host:              v.GetString("MONGODB_HOST"),
			Port:              v.GetInt("MONGODB_PORT"),
			Database:          v.GetString("MONGODB_DATABASE"),
			User:              v.GetString("MONGODB_USER"),
			Password:          v.GetString("MONGODB_PASSWORD"),
			AuthSource:        v.GetString("MONGODB_AUTHSOURCE"),
			ConnectionTimeout: time.Duration(v.GetInt("MONGODB_CONNECTION_TIMEOUT")) * time.Millisecond,
			SocketTimeout:     time.Duration(v.GetInt("MONGODB_SOCKET_TIMEOUT")) * time.Millisecond,
			RetryAttempts:     v.GetInt("MONGODB_RETRY_ATTEMPTS"),
		},
		CacheDriver: strings.ToLower(v.GetString("CACHE_DRIVER")),
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		CacheTTL:       getSeconds(v, "CACHE_TTL"),
		CacheCapacity:  v.GetInt("CACHE_CAPACITY"),
		RateLimitTTL:   getSeconds(v, "RATE_LIMIT_TTL"),
		RateLimitLimit: v.GetInt("RATE_LIMIT_LIMIT"),
		RabbitMQURL:    v.GetString("RABBITMQ_URL"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogEncoding:    v.GetString("LOG_ENCODING"),
	}

	if cfg.DatabaseDSN == "" {
		switch cfg.StoreDriver {
		case StorePostgres:
			cfg.DatabaseDSN = "host=127.0.0.1 user=postgres password=postgres dbname=salt port=5432 sslmode=disable"
		case StoreSQLite:
			cfg.DatabaseDSN = "file::memory:?cache=shared"
		}
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
		if cfg.Debug() {
			cfg.LogLevel = "debug"
		}
	}
	if cfg.LogEncoding == "" {
		cfg.LogEncoding = "json"
		if cfg.Debug() {
			cfg.LogEncoding = "console"
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid PORT %d", c.Port)
	}
	if !slices.Contains([]string{StoreMongo, StorePostgres, StoreSQLite, StoreMemory}, c.StoreDriver) {
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if !slices.Contains([]string{CacheRedis, CacheMemory}, c.CacheDriver) {
		return fmt.Errorf("config: unknown CACHE_DRIVER %q", c.CacheDriver)
	}
	if c.StoreDriver == StoreMongo && c.Mongo.Host == "" {
		return errors.New("config: MONGODB_HOST is required for the mongo store")
	}
	if c.Mongo.RetryAttempts < 1 {
		return fmt.Errorf("config: MONGODB_RETRY_ATTEMPTS must be at least 1, got %d", c.Mongo.RetryAttempts)
	}
	if c.CacheTTL < time.Second {
		return fmt.Errorf("config: CACHE_TTL must be at least 1s, got %s", c.CacheTTL)
	}
	if c.CacheCapacity <= 0 {
		return fmt.Errorf("config: CACHE_CAPACITY must be positive, got %d", c.CacheCapacity)
	}
	if c.RateLimitLimit <= 0 {
		return fmt.Errorf("config: RATE_LIMIT_LIMIT must be positive, got %d", c.RateLimitLimit)
	}
	if c.RateLimitTTL < time.Second {
		return fmt.Errorf("config: RATE_LIMIT_TTL must be at least 1s, got %s", c.RateLimitTTL)
	}
	return nil
}
