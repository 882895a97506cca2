package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the full service configuration, loaded from environment
// variables. Secrets (DB password, JWT secret, AI key) come from the
// environment as well; .env loading happens in main for local runs.
type Config struct {
	Env      string `envconfig:"ENV" default:"development"`
	Port     string `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// PostgreSQL
	DBHost        string        `envconfig:"DB_HOST" default:"localhost"`
	DBPort        string        `envconfig:"DB_PORT" default:"5432"`
	DBUser        string        `envconfig:"DB_USER" default:"postgres"`
	DBPassword    string        `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName        string        `envconfig:"DB_NAME" default:"grimoire"`
	DBSSLMode     string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns    int           `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	DBIdleTimeout time.Duration `envconfig:"DB_MAX_IDLE_TIME" default:"5m"`

	// Redis (progression snapshot cache)
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	RedisCacheTTL time.Duration `envconfig:"REDIS_CACHE_TTL" default:"10m"`

	// RabbitMQ; an empty URL disables event publishing
	RabbitMQURL         string `envconfig:"RABBITMQ_URL" default:""`
	ProgressEventsQueue string `envconfig:"PROGRESS_EVENTS_QUEUE" default:"progress_events"`

	// External model API (OpenAI-compatible)
	AIAPIKey      string        `envconfig:"AI_API_KEY"`
	AIModel       string        `envconfig:"AI_MODEL" default:"gpt-4o-mini"`
	AIBaseURL     string        `envconfig:"AI_BASE_URL" default:""`
	AITimeout     time.Duration `envconfig:"AI_TIMEOUT" default:"60s"`
	AIMaxRetries  int           `envconfig:"AI_MAX_RETRIES" default:"3"`
	AITokenBudget int           `envconfig:"AI_TOKEN_BUDGET" default:"6000"`

	// JWT verification of the identity provider's access tokens
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	// Game rules
	MaxTurns int `envconfig:"GAME_MAX_TURNS" default:"10"`

	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// Load reads and validates the configuration.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	// A missing model credential is fatal for every turn submission, so
	// refuse to start instead of failing each request later.
	if cfg.AIAPIKey == "" {
		return nil, fmt.Errorf("AI_API_KEY not set")
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = 10
	}
	return &cfg, nil
}

// GetDSN returns the PostgreSQL connection string.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// GetMigrateURL returns the DSN with the scheme golang-migrate's pgx/v5
// driver expects.
func (c *Config) GetMigrateURL() string {
	return fmt.Sprintf("pgx5://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// GetAllowedOrigins splits the comma-separated CORS origin list.
func (c *Config) GetAllowedOrigins() []string {
	raw := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(raw))
	for _, o := range raw {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
