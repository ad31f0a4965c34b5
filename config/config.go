package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config carries the environment-driven settings for the server.
type Config struct {
	Port      string
	MongoURI  string
	DBName    string
	SecretKey string
}

// Load reads .env if present and falls back to process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Port:      getEnv("PORT", "8000"),
		MongoURI:  getEnv("MONGODB_URI", "mongodb://127.0.0.1:27017"),
		DBName:    getEnv("DB_NAME", "coffee-shop"),
		SecretKey: os.Getenv("SECRET_KEY"),
	}

	if cfg.SecretKey == "" {
		log.Fatal("SECRET_KEY is not set in the environment variables")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
