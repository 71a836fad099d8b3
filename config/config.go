package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kendall-kelly/estate-inquiries-api/logger"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL           string
	Port                  string
	GoEnv                 string
	Auth0Domain           string
	Auth0Audience         string
	JWTSecret             string
	AWSRegion             string
	AWSS3Bucket           string
	AWSAccessKeyID        string
	AWSSecretAccessKey    string
	RedisURL              string
	AllowedOrigins        []string
	NotificationQueueSize int
	LogLevel              string
}

var current *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	// Determine which environment file to load
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		// If environment-specific file doesn't exist, try .env
		if err := godotenv.Load(); err != nil {
			// In production, environment variables are set directly
			// so it's okay if .env files don't exist
			logger.Get().Debug().Msg("No .env file found, using system environment variables")
		}
	} else {
		logger.Get().Info().Str("file", envFile).Msg("Loaded configuration")
	}

	queueSize, err := getEnvInt("NOTIFICATION_QUEUE_SIZE", 1024)
	if err != nil {
		return nil, err
	}

	config := &Config{
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		Port:                  getEnv("PORT", "8080"),
		GoEnv:                 getEnv("GO_ENV", "development"),
		Auth0Domain:           getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience:         getEnv("AUTH0_AUDIENCE", ""),
		JWTSecret:             getEnv("JWT_SECRET", ""),
		AWSRegion:             getEnv("AWS_REGION", "us-east-1"),
		AWSS3Bucket:           getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:        getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:    getEnv("AWS_SECRET_ACCESS_KEY", ""),
		RedisURL:              getEnv("REDIS_URL", ""),
		AllowedOrigins:        splitList(getEnv("ALLOWED_ORIGINS", "")),
		NotificationQueueSize: queueSize,
		LogLevel:              getEnv("LOG_LEVEL", "info"),
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if !c.UsesAuth0() && c.JWTSecret == "" {
		return fmt.Errorf("AUTH0_DOMAIN and AUTH0_AUDIENCE, or JWT_SECRET, are required")
	}
	if c.NotificationQueueSize <= 0 {
		return fmt.Errorf("NOTIFICATION_QUEUE_SIZE must be positive")
	}
	return nil
}

// UsesAuth0 reports whether tokens are validated against Auth0
func (c *Config) UsesAuth0() bool {
	return c.Auth0Domain != "" && c.Auth0Audience != ""
}

// HasImageStorage reports whether S3 presigning is configured
func (c *Config) HasImageStorage() bool {
	return c.AWSS3Bucket != ""
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// GetConfig returns the loaded configuration
func GetConfig() *Config {
	return current
}

// SetConfig replaces the process configuration
func SetConfig(c *Config) {
	current = c
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

// splitList parses a comma-separated list, dropping blanks
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
