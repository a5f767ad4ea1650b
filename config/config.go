package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds runtime configuration loaded from the environment
type Config struct {
	Host           string
	Port           string
	DatabaseURL    string
	AllowedOrigins string

	// CategoryURL is the retailer category page scanned on each run
	CategoryURL string

	// ScanSchedule is a cron expression (with seconds) for the daily scan
	ScanSchedule  string
	ScanOnStartup bool

	// Browser pacing for lazy-loaded content
	PageWait     time.Duration
	ScrollPasses int
	ScrollPause  time.Duration
	FetchRetries int
	RetryDelay   time.Duration

	CurrencySymbol string
	Category       string

	RateLimitPerSecond float64
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		Host:           getEnv("HOST", "0.0.0.0"),
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		CategoryURL: getEnv("CATEGORY_URL", "https://ksp.co.il/web/cat/31635..61633..573"),

		// Every day at 19:00
		ScanSchedule:  getEnv("SCAN_SCHEDULE", "0 0 19 * * *"),
		ScanOnStartup: getEnvBool("SCAN_ON_STARTUP", false),

		PageWait:     getEnvDuration("PAGE_WAIT", 5*time.Second),
		ScrollPasses: getEnvInt("SCROLL_PASSES", 3),
		ScrollPause:  getEnvDuration("SCROLL_PAUSE", 2*time.Second),
		FetchRetries: getEnvInt("FETCH_RETRIES", 2),
		RetryDelay:   getEnvDuration("RETRY_DELAY", 2*time.Second),

		CurrencySymbol: getEnv("CURRENCY_SYMBOL", DefaultCurrencySymbol),
		Category:       getEnv("PRODUCT_CATEGORY", ""),

		RateLimitPerSecond: getEnvFloat("RATE_LIMIT_PER_SECOND", 10),
	}
}

// Band returns the plausibility band for the configured product category,
// with env overrides taking precedence over the category table.
func (c *Config) Band() PriceBand {
	band := BandForCategory(c.Category)
	band.Min = getEnvFloat("PRICE_BAND_MIN", band.Min)
	band.Max = getEnvFloat("PRICE_BAND_MAX", band.Max)
	return band
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
