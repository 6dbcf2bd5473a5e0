package config

import (
	"os"
	"time"
)

type AppConfig struct {
	Environment string

	EnforceHTTPS bool

	RateLimitEnabled bool
	RateLimitConfigs map[string]RateLimitConfig

	CacheEnabled bool
	CacheTTLs    map[string]time.Duration
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

func GetDefaultConfig() *AppConfig {
	return &AppConfig{
		Environment:      envOr("APP_ENV", "development"),
		EnforceHTTPS:     false,
		RateLimitEnabled: true,
		RateLimitConfigs: map[string]RateLimitConfig{
			"/todos": {
				Requests: 100,
				Window:   time.Minute,
			},
		},
		CacheEnabled: true,
		CacheTTLs: map[string]time.Duration{
			"/todos": 3 * time.Second,
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
