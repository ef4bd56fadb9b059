package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config carries everything the binaries need, resolved from environment
// variables. Load .env (godotenv) before calling Load.
type Config struct {
	AlpacaAPIKey     string
	AlpacaSecretKey  string
	AlpacaTradingURL string
	AlpacaDataURL    string
	DatabaseURL      string
	Symbol           string
	RiskFreeRate     float64
	LogLevel         string
}

// Default MySQL connection string for local development.
const defaultDSN = "root:@tcp(127.0.0.1:3306)/options_data?charset=utf8mb4&parseTime=True&loc=UTC"

// Load reads configuration from the environment. Missing credentials are the
// one failure that must halt the process before any fetch is attempted.
func Load() (*Config, error) {
	cfg := &Config{
		AlpacaAPIKey:     os.Getenv("ALPACA_API_KEY"),
		AlpacaSecretKey:  os.Getenv("ALPACA_SECRET_KEY"),
		AlpacaTradingURL: getEnv("ALPACA_TRADING_URL", "https://paper-api.alpaca.markets"),
		AlpacaDataURL:    getEnv("ALPACA_DATA_URL", "https://data.alpaca.markets"),
		DatabaseURL:      getEnv("DATABASE_URL", defaultDSN),
		Symbol:           getEnv("SYMBOL", "SPY"),
		RiskFreeRate:     0.05,
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}

	if v := os.Getenv("RISK_FREE_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid RISK_FREE_RATE %q: %w", v, err)
		}
		cfg.RiskFreeRate = rate
	}

	if cfg.AlpacaAPIKey == "" {
		return nil, fmt.Errorf("ALPACA_API_KEY is required")
	}
	if cfg.AlpacaSecretKey == "" {
		return nil, fmt.Errorf("ALPACA_SECRET_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
