package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/utafrali/EVCatalog/pkg/config"
	"github.com/utafrali/EVCatalog/pkg/database"
)

// Config holds all configuration for the EV catalog service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"EV_HTTP_PORT" envDefault:"8080"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"evcatalog"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"evcatalog_secret"`
	PostgresDB   string `env:"EV_DB_NAME" envDefault:"ev_catalog"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Upper bound for a single store round trip.
	StoreTimeoutMs int `env:"STORE_TIMEOUT_MS" envDefault:"5000"`

	// Redis (average score cache)
	RedisEnabled         bool   `env:"REDIS_ENABLED" envDefault:"true"`
	RedisAddr            string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword        string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB              int    `env:"REDIS_DB" envDefault:"0"`
	ScoreCacheTTLSeconds int    `env:"SCORE_CACHE_TTL_SECONDS" envDefault:"300"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Firebase Authentication
	FirebaseProjectID     string `env:"FIREBASE_PROJECT_ID"`
	FirebaseJWKSURL       string `env:"FIREBASE_JWKS_URL" envDefault:"https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"`
	IdentityHTTPTimeoutMs int    `env:"IDENTITY_HTTP_TIMEOUT_MS" envDefault:"5000"`
	// Web SDK settings handed to the login page.
	FirebaseAPIKey     string `env:"FIREBASE_API_KEY"`
	FirebaseAuthDomain string `env:"FIREBASE_AUTH_DOMAIN"`

	// Write-route rate limiting, per client IP
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`

	StaticDir string `env:"STATIC_DIR" envDefault:"./static"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load ev catalog config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}
	if c.PostgresUser == "" {
		return fmt.Errorf("POSTGRES_USER is required")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be positive, got %d", c.DBMaxConns)
	}
	if c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS (%d), got %d", c.DBMaxConns, c.DBMinConns)
	}
	if c.StoreTimeoutMs <= 0 {
		return fmt.Errorf("STORE_TIMEOUT_MS must be positive, got %d", c.StoreTimeoutMs)
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}
	if c.FirebaseProjectID == "" {
		return fmt.Errorf("FIREBASE_PROJECT_ID is required")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

// Postgres returns the connection settings for database.NewPostgresPool.
func (c *Config) Postgres() *database.PostgresConfig {
	return &database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: time.Duration(c.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(c.DBMaxConnIdleTimeMins) * time.Minute,
	}
}

// Redis returns the connection settings for database.NewRedisClient.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// StoreTimeout is the per-call deadline applied by the services.
func (c *Config) StoreTimeout() time.Duration {
	return time.Duration(c.StoreTimeoutMs) * time.Millisecond
}

// ScoreCacheTTL is how long an average score stays cached.
func (c *Config) ScoreCacheTTL() time.Duration {
	return time.Duration(c.ScoreCacheTTLSeconds) * time.Second
}

// IdentityHTTPTimeout bounds each JWKS fetch.
func (c *Config) IdentityHTTPTimeout() time.Duration {
	return time.Duration(c.IdentityHTTPTimeoutMs) * time.Millisecond
}

// SlowQueryThreshold returns the slow-query log threshold, zero when disabled.
func (c *Config) SlowQueryThreshold() time.Duration {
	if c.SlowQueryThresholdMs <= 0 {
		return 0
	}
	return time.Duration(c.SlowQueryThresholdMs) * time.Millisecond
}

// AuthDomain returns the Firebase auth domain, defaulting to the project's
// firebaseapp.com host.
func (c *Config) AuthDomain() string {
	if c.FirebaseAuthDomain != "" {
		return c.FirebaseAuthDomain
	}
	return c.FirebaseProjectID + ".firebaseapp.com"
}
