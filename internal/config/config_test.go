package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LYNX_API_KEY", "LYNX_FALLBACK_URL", "LYNX_PORT", "LYNX_DB_PATH", "LYNX_BASE_URL",
		"LYNX_GEOIP_PATH", "LYNX_GEO_API_URL", "LYNX_GEO_TIMEOUT", "LYNX_SESSION_STRATEGY",
		"LYNX_FLUSH_INTERVAL", "LYNX_BUFFER_SIZE", "LYNX_CACHE_SIZE", "LYNX_TOP_N", "LYNX_IPCHECK",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_MinimalValid(t *testing.T) {
	clearEnv(t)
	t.Setenv("LYNX_API_KEY", "secret")
	t.Setenv("LYNX_FALLBACK_URL", "https://example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.DBPath != "./lynx.db" {
		t.Errorf("dbpath = %q, want %q", cfg.DBPath, "./lynx.db")
	}
	if cfg.SessionStrategy != SessionRandom {
		t.Errorf("session strategy = %q, want %q", cfg.SessionStrategy, SessionRandom)
	}
	if cfg.GeoTimeout != 800*time.Millisecond {
		t.Errorf("geo timeout = %v, want %v", cfg.GeoTimeout, 800*time.Millisecond)
	}
	if cfg.FlushInterval != 30*time.Second {
		t.Errorf("flush interval = %v, want %v", cfg.FlushInterval, 30*time.Second)
	}
	if cfg.BufferSize != 50000 {
		t.Errorf("buffer size = %d, want %d", cfg.BufferSize, 50000)
	}
	if cfg.CacheSize != 10000 {
		t.Errorf("cache size = %d, want %d", cfg.CacheSize, 10000)
	}
	if cfg.TopN != 10 {
		t.Errorf("top n = %d, want %d", cfg.TopN, 10)
	}
	if cfg.IPCheck {
		t.Error("ipcheck = true, want false by default")
	}
}

func TestLoad_AllFieldsOverridden(t *testing.T) {
	clearEnv(t)
	t.Setenv("LYNX_API_KEY", "s3cret")
	t.Setenv("LYNX_FALLBACK_URL", "https://fallback.example.com")
	t.Setenv("LYNX_PORT", "9090")
	t.Setenv("LYNX_DB_PATH", "/tmp/test.db")
	t.Setenv("LYNX_BASE_URL", "https://lynx.to")
	t.Setenv("LYNX_GEOIP_PATH", "/data/geo.mmdb")
	t.Setenv("LYNX_GEO_API_URL", "https://geo.example.com/v1")
	t.Setenv("LYNX_GEO_TIMEOUT", "500ms")
	t.Setenv("LYNX_SESSION_STRATEGY", "digest")
	t.Setenv("LYNX_FLUSH_INTERVAL", "10s")
	t.Setenv("LYNX_BUFFER_SIZE", "500")
	t.Setenv("LYNX_CACHE_SIZE", "200")
	t.Setenv("LYNX_TOP_N", "5")
	t.Setenv("LYNX_IPCHECK", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("port = %q, want %q", cfg.Port, "9090")
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("dbpath = %q, want %q", cfg.DBPath, "/tmp/test.db")
	}
	if cfg.APIKey != "s3cret" {
		t.Errorf("api key = %q, want %q", cfg.APIKey, "s3cret")
	}
	if cfg.FallbackURL != "https://fallback.example.com" {
		t.Errorf("fallback = %q, want %q", cfg.FallbackURL, "https://fallback.example.com")
	}
	if cfg.BaseURL != "https://lynx.to" {
		t.Errorf("base url = %q, want %q", cfg.BaseURL, "https://lynx.to")
	}
	if cfg.GeoIPPath != "/data/geo.mmdb" {
		t.Errorf("geoip = %q, want %q", cfg.GeoIPPath, "/data/geo.mmdb")
	}
	if cfg.GeoAPIURL != "https://geo.example.com/v1" {
		t.Errorf("geo api = %q, want %q", cfg.GeoAPIURL, "https://geo.example.com/v1")
	}
	if cfg.GeoTimeout != 500*time.Millisecond {
		t.Errorf("geo timeout = %v, want %v", cfg.GeoTimeout, 500*time.Millisecond)
	}
	if cfg.SessionStrategy != SessionDigest {
		t.Errorf("session strategy = %q, want %q", cfg.SessionStrategy, SessionDigest)
	}
	if cfg.FlushInterval != 10*time.Second {
		t.Errorf("flush = %v, want %v", cfg.FlushInterval, 10*time.Second)
	}
	if cfg.BufferSize != 500 {
		t.Errorf("buffer = %d, want %d", cfg.BufferSize, 500)
	}
	if cfg.CacheSize != 200 {
		t.Errorf("cache = %d, want %d", cfg.CacheSize, 200)
	}
	if cfg.TopN != 5 {
		t.Errorf("top n = %d, want %d", cfg.TopN, 5)
	}
	if !cfg.IPCheck {
		t.Error("ipcheck = false, want true")
	}
}

func TestLoad_MissingAPIKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("LYNX_FALLBACK_URL", "https://example.com")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing api key")
	}
	if err.Error() != "LYNX_API_KEY is required" {
		t.Errorf("error = %q, want %q", err.Error(), "LYNX_API_KEY is required")
	}
}

func TestLoad_MissingFallbackURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("LYNX_API_KEY", "secret")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing fallback url")
	}
	if err.Error() != "LYNX_FALLBACK_URL is required" {
		t.Errorf("error = %q, want %q", err.Error(), "LYNX_FALLBACK_URL is required")
	}
}

func TestLoad_InvalidSessionStrategy(t *testing.T) {
	clearEnv(t)
	t.Setenv("LYNX_API_KEY", "secret")
	t.Setenv("LYNX_FALLBACK_URL", "https://example.com")
	t.Setenv("LYNX_SESSION_STRATEGY", "fingerprint")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown session strategy")
	}
}

func TestLoad_GeoTimeoutOverOneSecond(t *testing.T) {
	clearEnv(t)
	t.Setenv("LYNX_API_KEY", "secret")
	t.Setenv("LYNX_FALLBACK_URL", "https://example.com")
	t.Setenv("LYNX_GEO_TIMEOUT", "2s")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for geo timeout above 1s")
	}
}

func TestLoad_ZeroBufferSize(t *testing.T) {
	clearEnv(t)
	t.Setenv("LYNX_API_KEY", "secret")
	t.Setenv("LYNX_FALLBACK_URL", "https://example.com")
	t.Setenv("LYNX_BUFFER_SIZE", "0")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for zero buffer size")
	}
	if err.Error() != "LYNX_BUFFER_SIZE must be positive" {
		t.Errorf("error = %q, want %q", err.Error(), "LYNX_BUFFER_SIZE must be positive")
	}
}

func TestLoad_NegativeFlushInterval(t *testing.T) {
	clearEnv(t)
	t.Setenv("LYNX_API_KEY", "secret")
	t.Setenv("LYNX_FALLBACK_URL", "https://example.com")
	t.Setenv("LYNX_FLUSH_INTERVAL", "-1s")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for negative flush interval")
	}
	if err.Error() != "LYNX_FLUSH_INTERVAL must be positive" {
		t.Errorf("error = %q, want %q", err.Error(), "LYNX_FLUSH_INTERVAL must be positive")
	}
}

func TestLoad_ZeroCacheSize(t *testing.T) {
	clearEnv(t)
	t.Setenv("LYNX_API_KEY", "secret")
	t.Setenv("LYNX_FALLBACK_URL", "https://example.com")
	t.Setenv("LYNX_CACHE_SIZE", "0")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for zero cache size")
	}
	if err.Error() != "LYNX_CACHE_SIZE must be positive" {
		t.Errorf("error = %q, want %q", err.Error(), "LYNX_CACHE_SIZE must be positive")
	}
}

func TestLoad_InvalidDurationFallsBackToDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("LYNX_API_KEY", "secret")
	t.Setenv("LYNX_FALLBACK_URL", "https://example.com")
	t.Setenv("LYNX_FLUSH_INTERVAL", "notaduration")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.FlushInterval != 30*time.Second {
		t.Errorf("flush = %v, want %v (default)", cfg.FlushInterval, 30*time.Second)
	}
}

func TestLoad_InvalidBoolFallsBackToDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("LYNX_API_KEY", "secret")
	t.Setenv("LYNX_FALLBACK_URL", "https://example.com")
	t.Setenv("LYNX_IPCHECK", "yep")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.IPCheck {
		t.Error("ipcheck = true, want false for unparseable value")
	}
}
