// Package config provides configuration loading and management for the application.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// HTTP server port
	Port string

	// API key for the Moralis indexing provider, sent as X-API-Key
	MoralisAPIKey string

	// Base URLs for the transaction-history providers
	MoralisBaseURL   string
	SolanaGatewayURL string
	BlockCypherURL   string

	// Base URLs for the public spot-price fallbacks
	CoinGeckoURL string
	BinanceURL   string
	CoinbaseURL  string

	// OpenTelemetry endpoint for observability
	OtelEndpoint string

	// Price cache staleness bound
	PriceCacheTTL time.Duration

	// Per-call timeout for outbound provider requests
	RequestTimeout time.Duration

	// Retry budget for outbound provider requests
	RetryMax int

	// Default transaction record cap when the request omits one
	DefaultTxLimit int

	// Server-side rate limiting
	RateLimitRPS   float64
	RateLimitBurst int

	// Circuit breaker settings for the transaction-provider path
	BreakerThreshold int
	BreakerCooldown  time.Duration

	// Allowed CORS origins, "*" by default
	CORSOrigins []string
}

// Load creates a new Config from environment variables
func Load() Config {
	return Config{
		Port:             GetEnvOrDefault("PORT", "8080"),
		MoralisAPIKey:    GetEnvOrDefault("MORALIS_API_KEY", ""),
		MoralisBaseURL:   GetEnvOrDefault("MORALIS_URL", "https://deep-index.moralis.io"),
		SolanaGatewayURL: GetEnvOrDefault("SOLANA_GATEWAY_URL", "https://solana-gateway.moralis.io"),
		BlockCypherURL:   GetEnvOrDefault("BLOCKCYPHER_URL", "https://api.blockcypher.com/v1/btc/main"),
		CoinGeckoURL:     GetEnvOrDefault("COINGECKO_URL", "https://api.coingecko.com"),
		BinanceURL:       GetEnvOrDefault("BINANCE_URL", "https://api.binance.com"),
		CoinbaseURL:      GetEnvOrDefault("COINBASE_URL", "https://api.coinbase.com"),
		OtelEndpoint:     GetEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		PriceCacheTTL:    GetEnvAsDuration("PRICE_CACHE_TTL", 300*time.Second),
		RequestTimeout:   GetEnvAsDuration("REQUEST_TIMEOUT", 10*time.Second),
		RetryMax:         GetEnvAsInt("RETRY_MAX", 3),
		DefaultTxLimit:   GetEnvAsInt("DEFAULT_TX_LIMIT", 100),
		RateLimitRPS:     GetEnvAsFloat("RATE_LIMIT_RPS", 10.0),
		RateLimitBurst:   GetEnvAsInt("RATE_LIMIT_BURST", 20),
		BreakerThreshold: GetEnvAsInt("BREAKER_THRESHOLD", 5),
		BreakerCooldown:  GetEnvAsDuration("BREAKER_COOLDOWN", 1*time.Minute),
		CORSOrigins:      splitList(GetEnvOrDefault("CORS_ORIGINS", "*")),
	}
}

// splitList splits a comma-separated env value into trimmed entries.
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// GetEnv retrieves an environment variable and whether it exists
func GetEnv(key string) (string, bool) {
	value, exists := os.LookupEnv(key)
	return value, exists
}

// GetEnvOrDefault retrieves an environment variable or returns the default value if not set
func GetEnvOrDefault(key, defaultValue string) string {
	if value, exists := GetEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvAsInt retrieves an environment variable as an integer with a default value
func GetEnvAsInt(key string, defaultValue int) int {
	if value, exists := GetEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetEnvAsFloat retrieves an environment variable as a float with a default value
func GetEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := GetEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// GetEnvAsDuration retrieves an environment variable as a duration with a default value
func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := GetEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
