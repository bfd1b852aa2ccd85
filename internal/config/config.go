package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	CRM      CRMConfig      `mapstructure:"crm"`
	Session  SessionConfig  `mapstructure:"session"`
	Sweeper  SweeperConfig  `mapstructure:"sweeper"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Demo     DemoConfig     `mapstructure:"demo"`
}

type ServerConfig struct {
	Port string `mapstructure:"SERVER_PORT"`
	Host string `mapstructure:"SERVER_HOST"`
	Env  string `mapstructure:"ENV"`
}

type DatabaseConfig struct {
	URL          string `mapstructure:"DATABASE_URL"`
	MaxOpenConns int    `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns int    `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type CRMConfig struct {
	BaseURL string `mapstructure:"CRM_BASE_URL"`
	Timeout string `mapstructure:"CRM_TIMEOUT"`
}

type SessionConfig struct {
	KeyPrefix string `mapstructure:"SESSION_KEY_PREFIX"`
	Expiry    string `mapstructure:"SESSION_EXPIRY"`
}

type SweeperConfig struct {
	Schedule string `mapstructure:"SWEEPER_SCHEDULE"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

type DemoConfig struct {
	Enabled     bool    `mapstructure:"DEMO_MODE"`
	FailureRate float64 `mapstructure:"DEMO_FAILURE_RATE"`
	Delay       string  `mapstructure:"DEMO_DELAY"`
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CRM_BASE_URL", "http://localhost:8080/api")
	viper.SetDefault("CRM_TIMEOUT", "10s")
	viper.SetDefault("SESSION_KEY_PREFIX", "ume_loans_session")
	viper.SetDefault("SESSION_EXPIRY", "24h")
	viper.SetDefault("SWEEPER_SCHEDULE", "0 0 * * * *")
	viper.SetDefault("DEMO_MODE", true)
	viper.SetDefault("DEMO_FAILURE_RATE", 0.0)
	viper.SetDefault("DEMO_DELAY", "0s")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read from .env file (optional)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = viper.ReadInConfig()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.CRM.BaseURL == "" {
		return fmt.Errorf("CRM_BASE_URL is required")
	}

	if _, err := time.ParseDuration(c.CRM.Timeout); err != nil {
		return fmt.Errorf("CRM_TIMEOUT must be a valid duration: %w", err)
	}

	if _, err := time.ParseDuration(c.Session.Expiry); err != nil {
		return fmt.Errorf("SESSION_EXPIRY must be a valid duration: %w", err)
	}

	if c.Demo.FailureRate < 0 || c.Demo.FailureRate >= 1 {
		return fmt.Errorf("DEMO_FAILURE_RATE must be in [0, 1)")
	}

	if _, err := time.ParseDuration(c.Demo.Delay); err != nil {
		return fmt.Errorf("DEMO_DELAY must be a valid duration: %w", err)
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// GetCRMTimeout returns the CRM request timeout as duration
func (c *Config) GetCRMTimeout() time.Duration {
	timeout, _ := time.ParseDuration(c.CRM.Timeout)
	return timeout
}

// GetSessionExpiry returns the session expiry window as duration
func (c *Config) GetSessionExpiry() time.Duration {
	expiry, _ := time.ParseDuration(c.Session.Expiry)
	return expiry
}

// GetDemoDelay returns the mock CRM latency as duration
func (c *Config) GetDemoDelay() time.Duration {
	delay, _ := time.ParseDuration(c.Demo.Delay)
	return delay
}
