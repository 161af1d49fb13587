// Package config loads the storefront server configuration from the
// environment.
package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	pkgconfig "github.com/ShadEl7/her-essence-website/pkg/config"
	"github.com/ShadEl7/her-essence-website/pkg/database"
)

// Backends selectable through the environment.
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"

	SearchMemory        = "memory"
	SearchElasticsearch = "elasticsearch"

	CheckoutMock   = "mock"
	CheckoutRemote = "remote"

	TrackingMemory = "memory"
	TrackingRemote = "remote"
)

// Config holds all configuration for the storefront server.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort           int      `env:"HTTP_PORT" envDefault:"3000"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	PprofAllowedCIDRs  []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32,::1/128" envSeparator:","`

	// Cart
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"memory"`
	CartStorageKey string `env:"CART_STORAGE_KEY" envDefault:"cartItems"`
	Currency       string `env:"CURRENCY" envDefault:"USD"`

	// CartTTLHours expires Redis carts; 0 keeps them forever.
	CartTTLHours int `env:"CART_TTL_HOURS" envDefault:"0"`

	// Redis
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// PostgreSQL
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"storefront"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:""`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"storefront"`
	PostgresSSLMode  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// PostgresSlowQueryMS logs kv_store queries slower than this; 0 disables.
	PostgresSlowQueryMS int `env:"POSTGRES_SLOW_QUERY_MS" envDefault:"200"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Catalog search
	SearchBackend      string `env:"SEARCH_BACKEND" envDefault:"memory"`
	ElasticsearchURL   string `env:"ELASTICSEARCH_URL" envDefault:"http://localhost:9200"`
	ElasticsearchIndex string `env:"ELASTICSEARCH_INDEX" envDefault:"storefront_products"`

	// Checkout
	CheckoutProvider  string        `env:"CHECKOUT_PROVIDER" envDefault:"mock"`
	CheckoutRemoteURL string        `env:"CHECKOUT_REMOTE_URL" envDefault:""`
	CheckoutTimeout   time.Duration `env:"CHECKOUT_TIMEOUT" envDefault:"10s"`

	// Order tracking
	TrackingBackend   string `env:"TRACKING_BACKEND" envDefault:"memory"`
	TrackingRemoteURL string `env:"TRACKING_REMOTE_URL" envDefault:""`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	var errs []error

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP port: %d", c.HTTPPort))
	}
	if !slices.Contains([]string{StorageMemory, StorageRedis, StoragePostgres}, c.StorageBackend) {
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND must be one of memory, redis, postgres: %q", c.StorageBackend))
	}
	if !slices.Contains([]string{SearchMemory, SearchElasticsearch}, c.SearchBackend) {
		errs = append(errs, fmt.Errorf("SEARCH_BACKEND must be one of memory, elasticsearch: %q", c.SearchBackend))
	}
	if !slices.Contains([]string{CheckoutMock, CheckoutRemote}, c.CheckoutProvider) {
		errs = append(errs, fmt.Errorf("CHECKOUT_PROVIDER must be one of mock, remote: %q", c.CheckoutProvider))
	}
	if c.CheckoutProvider == CheckoutRemote && c.CheckoutRemoteURL == "" {
		errs = append(errs, errors.New("CHECKOUT_REMOTE_URL is required when CHECKOUT_PROVIDER=remote"))
	}
	if !slices.Contains([]string{TrackingMemory, TrackingRemote}, c.TrackingBackend) {
		errs = append(errs, fmt.Errorf("TRACKING_BACKEND must be one of memory, remote: %q", c.TrackingBackend))
	}
	if c.TrackingBackend == TrackingRemote && c.TrackingRemoteURL == "" {
		errs = append(errs, errors.New("TRACKING_REMOTE_URL is required when TRACKING_BACKEND=remote"))
	}
	if c.PostgresSlowQueryMS < 0 {
		errs = append(errs, fmt.Errorf("POSTGRES_SLOW_QUERY_MS must not be negative: %d", c.PostgresSlowQueryMS))
	}
	if c.CartTTLHours < 0 {
		errs = append(errs, fmt.Errorf("CART_TTL_HOURS must not be negative: %d", c.CartTTLHours))
	}
	if c.CartStorageKey == "" {
		errs = append(errs, errors.New("CART_STORAGE_KEY is required"))
	}
	if len(c.Currency) != 3 {
		errs = append(errs, fmt.Errorf("CURRENCY must be a 3-letter ISO code: %q", c.Currency))
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED=true"))
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		errs = append(errs, fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0: %v", c.OTELSampleRate))
	}

	return errors.Join(errs...)
}

// CartTTL returns the Redis cart expiry. Zero means no expiry.
func (c *Config) CartTTL() time.Duration {
	return time.Duration(c.CartTTLHours) * time.Hour
}

// SlowQueryThreshold returns the slow query logging threshold. Zero disables
// slow query logging.
func (c *Config) SlowQueryThreshold() time.Duration {
	return time.Duration(c.PostgresSlowQueryMS) * time.Millisecond
}

// Redis returns the Redis client configuration.
func (c *Config) Redis() database.RedisConfig {
	rc := database.DefaultRedisConfig()
	rc.Addr = c.RedisAddr
	rc.Password = c.RedisPassword
	rc.DB = c.RedisDB
	return rc
}

// Postgres returns the PostgreSQL pool configuration.
func (c *Config) Postgres() database.PostgresConfig {
	pc := database.DefaultPostgresConfig()
	pc.Host = c.PostgresHost
	pc.Port = c.PostgresPort
	pc.User = c.PostgresUser
	pc.Password = c.PostgresPassword
	pc.DBName = c.PostgresDB
	pc.SSLMode = c.PostgresSSLMode
	return pc
}
