package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	SessionRandom = "random"
	SessionDigest = "digest"
)

type Config struct {
	Port            string
	DBPath          string
	APIKey          string
	BaseURL         string
	FallbackURL     string
	GeoIPPath       string
	GeoAPIURL       string
	GeoTimeout      time.Duration
	SessionStrategy string
	FlushInterval   time.Duration
	BufferSize      int
	CacheSize       int
	TopN            int
	IPCheck         bool
}

func Load() (*Config, error) {
	apiKey := os.Getenv("LYNX_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("LYNX_API_KEY is required")
	}

	fallbackURL := os.Getenv("LYNX_FALLBACK_URL")
	if fallbackURL == "" {
		return nil, fmt.Errorf("LYNX_FALLBACK_URL is required")
	}

	cfg := &Config{
		Port:            envOrDefault("LYNX_PORT", "8080"),
		DBPath:          envOrDefault("LYNX_DB_PATH", "./lynx.db"),
		APIKey:          apiKey,
		BaseURL:         envOrDefault("LYNX_BASE_URL", "http://localhost:8080"),
		FallbackURL:     fallbackURL,
		GeoIPPath:       os.Getenv("LYNX_GEOIP_PATH"),
		GeoAPIURL:       os.Getenv("LYNX_GEO_API_URL"),
		GeoTimeout:      parseDuration("LYNX_GEO_TIMEOUT", 800*time.Millisecond),
		SessionStrategy: envOrDefault("LYNX_SESSION_STRATEGY", SessionRandom),
		FlushInterval:   parseDuration("LYNX_FLUSH_INTERVAL", 30*time.Second),
		BufferSize:      parseInt("LYNX_BUFFER_SIZE", 50000),
		CacheSize:       parseInt("LYNX_CACHE_SIZE", 10000),
		TopN:            parseInt("LYNX_TOP_N", 10),
		IPCheck:         parseBool("LYNX_IPCHECK", false),
	}

	if cfg.SessionStrategy != SessionRandom && cfg.SessionStrategy != SessionDigest {
		return nil, fmt.Errorf("LYNX_SESSION_STRATEGY must be %q or %q", SessionRandom, SessionDigest)
	}
	if cfg.GeoTimeout <= 0 || cfg.GeoTimeout > time.Second {
		return nil, fmt.Errorf("LYNX_GEO_TIMEOUT must be positive and at most 1s")
	}
	if cfg.FlushInterval <= 0 {
		return nil, fmt.Errorf("LYNX_FLUSH_INTERVAL must be positive")
	}
	if cfg.BufferSize <= 0 {
		return nil, fmt.Errorf("LYNX_BUFFER_SIZE must be positive")
	}
	if cfg.CacheSize <= 0 {
		return nil, fmt.Errorf("LYNX_CACHE_SIZE must be positive")
	}
	if cfg.TopN <= 0 {
		return nil, fmt.Errorf("LYNX_TOP_N must be positive")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func parseBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
