package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURI   string
	TelegramToken string
	AIAPIKey      string
	AIBaseURL     string
	AIModel       string
	Timezone      string
	HTTPAddr      string
	SweepSecret   string
	SweepSpec     string
	LogLevel      string
}

func Load() (*Config, error) {
	// .env file is optional in production
	_ = godotenv.Load()

	return &Config{
		DatabaseURI:   os.Getenv("DATABASE_URI"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		AIAPIKey:      os.Getenv("AI_API_KEY"),
		AIBaseURL:     getEnvOrDefault("AI_BASE_URL", "https://openrouter.ai/api/v1"),
		AIModel:       getEnvOrDefault("AI_MODEL", "openai/gpt-4o-mini"),
		Timezone:      getEnvOrDefault("TIMEZONE", "Africa/Lagos"),
		HTTPAddr:      getEnvOrDefault("HTTP_ADDR", ":3000"),
		SweepSecret:   os.Getenv("SWEEP_SECRET"),
		SweepSpec:     getEnvOrDefault("SWEEP_SPEC", "@every 1m"),
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "info"),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
