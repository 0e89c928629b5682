package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
	}

	Server struct {
		Port    string
		GinMode string
	}

	Auth struct {
		JWTSecret string
		TokenTTL  time.Duration
		Issuer    string
	}

	Stream struct {
		// QueueSize bounds each SSE subscriber's event queue. When a
		// subscriber falls behind, the oldest queued event is dropped.
		QueueSize int
	}

	RateLimit struct {
		RequestsPerSecond float64
		Burst             int
	}

	CORS struct {
		AllowOrigins string
		AllowMethods string
		AllowHeaders string
	}

	LogLevel string
}

// Load loads configuration from environment variables
func Load() *Config {
	_ = godotenv.Load()

	config := &Config{}

	config.DB.Host = getEnv("DB_HOST", "localhost")
	config.DB.Port = getEnv("DB_PORT", "5432")
	config.DB.User = getEnv("DB_USER", "pollstream")
	config.DB.Password = getEnv("DB_PASSWORD", "pollstream_password")
	config.DB.Name = getEnv("DB_NAME", "pollstream_db")
	config.DB.SSLMode = getEnv("DB_SSLMODE", "disable")

	config.Server.Port = getEnv("PORT", "8080")
	config.Server.GinMode = getEnv("GIN_MODE", "debug")

	config.Auth.JWTSecret = getEnv("JWT_SECRET", "dev-secret-change-me")
	config.Auth.TokenTTL = getEnvAsDuration("TOKEN_TTL", 30*time.Minute)
	config.Auth.Issuer = getEnv("JWT_ISSUER", "pollstream-api")

	config.Stream.QueueSize = getEnvAsInt("STREAM_QUEUE_SIZE", 100)

	config.RateLimit.RequestsPerSecond = getEnvAsFloat("RATE_LIMIT_RPS", 5)
	config.RateLimit.Burst = getEnvAsInt("RATE_LIMIT_BURST", 10)

	config.CORS.AllowOrigins = getEnv("CORS_ALLOW_ORIGINS", "*")
	config.CORS.AllowMethods = getEnv("CORS_ALLOW_METHODS", "GET,POST,PUT,PATCH,DELETE,HEAD,OPTIONS")
	config.CORS.AllowHeaders = getEnv("CORS_ALLOW_HEADERS", "Origin,Content-Length,Content-Type,Authorization")

	config.LogLevel = getEnv("LOG_LEVEL", "info")

	return config
}

// GetDatabaseURL returns the database connection URL
func (c *Config) GetDatabaseURL() string {
	return "postgres://" + c.DB.User + ":" + c.DB.Password + "@" + c.DB.Host + ":" + c.DB.Port + "/" + c.DB.Name + "?sslmode=" + c.DB.SSLMode
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as int or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat gets an environment variable as float64 or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsDuration gets an environment variable as time.Duration or returns a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
