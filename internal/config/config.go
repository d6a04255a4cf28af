package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Gemini AI
	GeminiAPIKey string
	GeminiModel  string

	// Image fetching
	ImageFetchTimeout time.Duration
	ImageMaxBytes     int64

	// Logging
	LogLevel string
	LogFile  string

	// Frontend
	FrontendURL string

	// CLI client
	APIBaseURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port: getEnvOrDefault("PORT", "8080"),
		Env:  getEnvOrDefault("ENV", "development"),
		// The key may be absent: the AI endpoints then fail per request
		// instead of the process refusing to start.
		GeminiAPIKey:      getEnvOrDefault("GOOGLE_GEMINI_API_KEY", ""),
		GeminiModel:       getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		ImageFetchTimeout: time.Duration(getEnvAsIntOrDefault("IMAGE_FETCH_TIMEOUT_SECONDS", 30)) * time.Second,
		ImageMaxBytes:     int64(getEnvAsIntOrDefault("IMAGE_MAX_BYTES", 20*1024*1024)),
		LogLevel:          getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:           getEnvOrDefault("LOG_FILE", ""),
		FrontendURL:       getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
		APIBaseURL:        getEnvOrDefault("EDITZEN_API_URL", "http://localhost:8080"),
	}

	return cfg
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return defaultVal
	}
	return n
}
