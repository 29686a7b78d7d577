package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	// Client configuration
	Environment string

	// Backend API configuration
	APIBaseURL     string
	RequestTimeout time.Duration

	// Listing fee configuration
	ListingFee      decimal.Decimal
	ListingCurrency string

	// Payment return listener (loopback address the gateway redirects to)
	ReturnListenerAddr string

	// Session persistence (empty disables Redis, sessions stay in memory)
	RedisURL string

	// Monitoring
	EnableMetrics bool
	MetricsPort   string
}

func LoadConfig() *Config {
	if err := godotenv.Load(".env"); err == nil {
		log.Println("Loaded configuration from .env file")
	}

	return &Config{
		// Client
		Environment: getEnv("ENVIRONMENT", "development"),

		// Backend API
		APIBaseURL:     getEnv("API_BASE_URL", "https://api.yuvsiksha.in/api"),
		RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", "30s"),

		// Listing fee
		ListingFee:      getEnvAsDecimal("LISTING_FEE", "499"),
		ListingCurrency: getEnv("LISTING_CURRENCY", "INR"),

		// Payment return listener
		ReturnListenerAddr: getEnv("RETURN_LISTENER_ADDR", "127.0.0.1:8964"),

		// Session persistence
		RedisURL: getEnv("REDIS_URL", ""),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", false),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

func getEnvAsDecimal(key string, defaultValue string) decimal.Decimal {
	valueStr := getEnv(key, defaultValue)
	if value, err := decimal.NewFromString(valueStr); err == nil {
		return value
	}
	value, _ := decimal.NewFromString(defaultValue)
	return value
}
