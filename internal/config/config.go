package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Supported credential store drivers.
const (
	DriverMySQL    = "mysql"
	DriverRedis    = "redis"
	DriverDynamoDB = "dynamodb"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Env          string        `env:"APP_ENV" env-default:"local"`
	ServerPort   string        `env:"SERVER_PORT" env-default:"8080"`
	JWTSecret    string        `env:"JWT_SECRET" env-required:"true"`
	SwaggerHost  string        `env:"SWAGGER_HOST"`
	StoreDriver  string        `env:"STORE_DRIVER" env-default:"mysql"`
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" env-default:"5s"`

	MySQL    MySQL
	Redis    Redis
	DynamoDB DynamoDB
	Donation DonationAPI
	Log      Log
	Limits   Limits
}

// MySQL configures the gorm-backed user store.
type MySQL struct {
	DSN string `env:"MYSQL_DSN" env-default:"user:password@tcp(localhost:3306)/app?charset=utf8mb4&parseTime=True&loc=UTC"`
}

// Redis configures the redis-backed user store.
type Redis struct {
	Addr     string `env:"REDIS_ADDR" env-default:"localhost:6379"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
	Password string `env:"REDIS_PASSWORD"`
}

// DynamoDB configures the dynamodb-backed user store.
type DynamoDB struct {
	Region          string `env:"AWS_REGION" env-default:"ap-south-1"`
	Table           string `env:"DYNAMO_DB_TABLE" env-default:"Users"`
	Endpoint        string `env:"DYNAMO_DB_ENDPOINT"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
}

// DonationAPI configures the upstream donation service.
type DonationAPI struct {
	BaseURL string        `env:"DONATION_API_URL" env-required:"true"`
	Timeout time.Duration `env:"DONATION_API_TIMEOUT" env-default:"5s"`
}

// Log configures logrus.
type Log struct {
	Level  string `env:"LOG_LEVEL" env-default:"info"`
	Format string `env:"LOG_FORMAT" env-default:"json"`
}

// Limits configures per-IP rate limiting of signup and login.
type Limits struct {
	AuthRate  float64 `env:"AUTH_RATE_LIMIT" env-default:"5"`
	AuthBurst int     `env:"AUTH_RATE_BURST" env-default:"10"`
}

// Load builds Config from the environment. A missing JWT_SECRET or
// DONATION_API_URL is an error; callers must refuse to start.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values cleanenv cannot express as tags. An env var that is
// present but empty passes env-required, so required keys are rechecked here.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	if c.Donation.BaseURL == "" {
		return fmt.Errorf("DONATION_API_URL must be set")
	}
	switch c.StoreDriver {
	case DriverMySQL, DriverRedis, DriverDynamoDB:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	if c.Donation.Timeout <= 0 {
		return fmt.Errorf("DONATION_API_TIMEOUT must be positive")
	}
	return nil
}

// Usage renders the environment variables Load understands.
func Usage() (string, error) {
	var cfg Config
	return cleanenv.GetDescription(&cfg, nil)
}
