// internal/config/config.go
package config

import (
	"os"
	"strings"
	"time"

	"leadscout-service/internal/pkg/jwt"
)

type AppConfig struct {
	// Server
	HTTPAddr       string
	AllowedOrigins []string

	// Redis
	RedisAddr string
	RedisPass string

	// JWT
	JWT jwt.Config

	// Scraping engine
	ScraperEngineURL   string
	ScraperEngineToken string

	// Admin bootstrap
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	return AppConfig{
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:4200"}),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass: getEnv("REDIS_PASS", ""),

		JWT: jwt.Config{
			Secret:     getEnv("JWT_SECRET", ""),
			Issuer:     "leadscout",
			Audience:   "leadscout-api",
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
		},

		ScraperEngineURL:   getEnv("SCRAPER_ENGINE_URL", ""),
		ScraperEngineToken: getEnv("SCRAPER_ENGINE_TOKEN", ""),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminName:     getEnv("ADMIN_NAME", "Administrator"),
	}
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
