package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Identity IdentityConfig
	Billing  BillingConfig
	Auth     AuthConfig
	App      AppConfig
}

type ServerConfig struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

type DatabaseConfig struct {
	DSN            string `env:"DB_DSN"`
	Host           string `env:"DB_HOST" envDefault:"localhost"`
	Port           int    `env:"DB_PORT" envDefault:"5432"`
	User           string `env:"DB_USER" envDefault:"postgres"`
	Password       string `env:"DB_PASSWORD"`
	Name           string `env:"DB_NAME" envDefault:"folio"`
	MaxConns       int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	MinConns       int32  `env:"DB_MIN_CONNS" envDefault:"2"`
	MigrateOnStart bool   `env:"DB_MIGRATE" envDefault:"false"`
}

type RedisConfig struct {
	Addr        string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password    string        `env:"REDIS_PASSWORD"`
	DB          int           `env:"REDIS_DB" envDefault:"0"`
	DeliveryTTL time.Duration `env:"WEBHOOK_DELIVERY_TTL" envDefault:"72h"`
}

type IdentityConfig struct {
	WebhookSecret string        `env:"IDENTITY_WEBHOOK_SECRET"`
	ResetURL      string        `env:"IDENTITY_RESET_URL"`
	APIKey        string        `env:"IDENTITY_API_KEY"`
	Timeout       time.Duration `env:"IDENTITY_TIMEOUT" envDefault:"10s"`
}

type BillingConfig struct {
	SecretKey         string        `env:"STRIPE_SECRET_KEY"`
	WebhookSecret     string        `env:"STRIPE_WEBHOOK_SECRET"`
	WebhookTolerance  time.Duration `env:"STRIPE_WEBHOOK_TOLERANCE" envDefault:"5m"`
	CustomerUserIDKey string        `env:"STRIPE_CUSTOMER_USER_ID_KEY" envDefault:"user_id"`
	APIRateLimit      float64       `env:"STRIPE_API_RATE_LIMIT" envDefault:"20"`
	APIBurst          int           `env:"STRIPE_API_BURST" envDefault:"5"`
}

type AuthConfig struct {
	JWKSURL   string `env:"AUTH_JWKS_URL"`
	Issuer    string `env:"AUTH_ISSUER"`
	AdminRole string `env:"AUTH_ADMIN_ROLE" envDefault:"admin"`
}

type AppConfig struct {
	Environment        string `env:"APP_ENV" envDefault:"development"`
	LogLevel           string `env:"LOG_LEVEL" envDefault:"info"`
	Version            string `env:"APP_VERSION" envDefault:"1.0.0"`
	ClaimSweepSchedule string `env:"CLAIM_SWEEP_SCHEDULE" envDefault:"@every 1m"`
	RunSweeperInAPI    bool   `env:"CLAIM_SWEEP_IN_API" envDefault:"false"`
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.DSN == "" && c.Database.Host == "" {
		return fmt.Errorf("DB_DSN or DB_HOST is required")
	}

	if c.Billing.APIRateLimit <= 0 {
		return fmt.Errorf("STRIPE_API_RATE_LIMIT must be positive")
	}

	if !c.IsProduction() {
		return nil
	}

	if c.Identity.WebhookSecret == "" {
		return fmt.Errorf("IDENTITY_WEBHOOK_SECRET is required in production")
	}
	if c.Billing.WebhookSecret == "" {
		return fmt.Errorf("STRIPE_WEBHOOK_SECRET is required in production")
	}
	if c.Billing.SecretKey == "" {
		return fmt.Errorf("STRIPE_SECRET_KEY is required in production")
	}
	if c.Auth.JWKSURL == "" {
		return fmt.Errorf("AUTH_JWKS_URL is required in production")
	}

	return nil
}
