package config

import (
	"fmt"
	"os"
	"strconv"
)

type PostgresConfig struct {
	Host     string
	Port     string
	DB       string
	Username string
	Password string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type RepositoriesConfig struct {
	Postgres PostgresConfig
}

// PricingConfig holds the amounts charged for gated AI operations, in cents.
type PricingConfig struct {
	GenerationCents  int64
	EditCents        int64
	Currency         string
	FreeEditsPerTrip int
}

type Config struct {
	Repositories RepositoriesConfig
	Pricing      PricingConfig
	ServerPort   string
	GeminiAPIKey string
	GeminiModel  string
	StripeAPIKey string
}

func Load() (*Config, error) {
	cfg := &Config{
		Repositories: RepositoriesConfig{
			Postgres: PostgresConfig{
				Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
				Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
				DB:       getEnvOrDefault("POSTGRES_DB", "voyager"),
				Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
				Password: getEnvOrDefault("POSTGRES_PASSWORD", ""),
				SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
				MaxConns: 30,
				MinConns: 5,
			},
		},
		Pricing: PricingConfig{
			GenerationCents:  getEnvInt64OrDefault("PRICE_GENERATION_CENTS", 299),
			EditCents:        getEnvInt64OrDefault("PRICE_EDIT_CENTS", 99),
			Currency:         getEnvOrDefault("PRICE_CURRENCY", "usd"),
			FreeEditsPerTrip: int(getEnvInt64OrDefault("FREE_EDITS_PER_TRIP", 2)),
		},
		ServerPort:   getEnvOrDefault("SERVER_PORT", "8091"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		StripeAPIKey: os.Getenv("STRIPE_API_KEY"),
	}

	if cfg.Repositories.Postgres.Password == "" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD environment variable is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
