package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the coupon service.
type Config struct {
	Port        string
	MongoURI    string
	MongoDB     string
	StoreDriver string // "mongo" or "memory"
}

// Load reads configuration from the environment, with an optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:        GetEnv("PORT", "8000"),
		MongoURI:    GetEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     GetEnv("MONGO_DB", "coupon_studio"),
		StoreDriver: GetEnv("STORE_DRIVER", "mongo"),
	}
}

// GetEnv returns the value of an environment variable or a fallback.
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
