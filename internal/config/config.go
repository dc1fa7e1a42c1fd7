package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI string
	DBName   string
	Port     string
	GinMode  string

	CORSOrigins []string
	BcryptCost  int

	// Redis Configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// JWT Token Secrets
	AccessSecret  string
	RefreshSecret string

	// IP rate limiting (requests per window seconds)
	RateLimitReqs   int
	RateLimitWindow int

	// Scraping API (Apify-style hosted actors)
	ScraperAPIURL        string
	ScraperAPIKey        string
	InstagramActor       string
	TikTokActor          string
	ScraperTimeout       int // seconds
	ScraperRequestsPM    int // upstream requests per minute
	DefaultVideoCount    int
	SubscriptionCacheTTL int // seconds; entitlement snapshots gate billing actions

	// Usage/history retention for the cleanup job
	UsageRetentionDays   int
	HistoryRetentionDays int
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017/social_search"),
		DBName:      getEnv("DB_NAME", "social_search"),
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),
		BcryptCost:  getEnvInt("BCRYPT_COST", 12),

		// Redis Configuration
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		// JWT Token Secrets
		AccessSecret:  getEnv("ACCESS_SECRET", ""),
		RefreshSecret: getEnv("REFRESH_SECRET", ""),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		// Scraping API
		ScraperAPIURL:        getEnv("SCRAPER_API_URL", "https://api.apify.com/v2"),
		ScraperAPIKey:        getEnv("SCRAPER_API_KEY", ""),
		InstagramActor:       getEnv("INSTAGRAM_ACTOR", "apify~instagram-scraper"),
		TikTokActor:          getEnv("TIKTOK_ACTOR", "apidojo~tiktok-scraper"),
		ScraperTimeout:       getEnvInt("SCRAPER_TIMEOUT", 120),
		ScraperRequestsPM:    getEnvInt("SCRAPER_REQUESTS_PER_MINUTE", 30),
		DefaultVideoCount:    getEnvInt("DEFAULT_VIDEO_COUNT", 5),
		SubscriptionCacheTTL: getEnvInt("SUBSCRIPTION_CACHE_TTL", 120),

		UsageRetentionDays:   getEnvInt("USAGE_RETENTION_DAYS", 30),
		HistoryRetentionDays: getEnvInt("HISTORY_RETENTION_DAYS", 90),
	}

	// Validate required fields
	if cfg.AccessSecret == "" {
		return nil, fmt.Errorf("ACCESS_SECRET is required - set it in .env file")
	}

	if cfg.RefreshSecret == "" {
		return nil, fmt.Errorf("REFRESH_SECRET is required - set it in .env file")
	}

	if cfg.ScraperAPIKey == "" {
		return nil, fmt.Errorf("SCRAPER_API_KEY is required - set it in .env file")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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
