package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNoop_ReturnsEmptyResult(t *testing.T) {
	var p Provider = Noop{}
	if got := p.Lookup(context.Background(), "8.8.8.8"); got != (Result{}) {
		t.Errorf("expected zero Result, got %+v", got)
	}
	p.Close() // should not panic
}

func TestUsable(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"8.8.8.8", true},
		{"2001:4860:4860::8888", true},
		{"127.0.0.1", false},
		{"10.0.0.5", false},
		{"192.168.1.1", false},
		{"0.0.0.0", false},
		{"not-an-ip", false},
		{"", false},
	}
	for _, tt := range tests {
		if _, got := usable(tt.ip); got != tt.want {
			t.Errorf("usable(%q) = %v, want %v", tt.ip, got, tt.want)
		}
	}
}

func TestHTTPProvider_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/8.8.8.8" {
			t.Errorf("path = %q, want /8.8.8.8", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"country_code":"US","country_name":"United States","city":"Mountain View","region":"California","latitude":37.4,"longitude":-122.07,"timezone":"America/Los_Angeles"}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, time.Second)
	got := p.Lookup(context.Background(), "8.8.8.8")

	if got.CountryCode != "US" || got.CountryName != "United States" {
		t.Errorf("country = %q/%q", got.CountryCode, got.CountryName)
	}
	if got.City != "Mountain View" || got.Region != "California" {
		t.Errorf("city/region = %q/%q", got.City, got.Region)
	}
	if got.Timezone != "America/Los_Angeles" {
		t.Errorf("timezone = %q", got.Timezone)
	}
}

func TestHTTPProvider_Non2xxDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, time.Second)
	if got := p.Lookup(context.Background(), "8.8.8.8"); got != (Result{}) {
		t.Errorf("expected zero Result, got %+v", got)
	}
}

func TestHTTPProvider_MalformedBodyDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, time.Second)
	if got := p.Lookup(context.Background(), "8.8.8.8"); got != (Result{}) {
		t.Errorf("expected zero Result, got %+v", got)
	}
}

func TestHTTPProvider_TimeoutDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, 50*time.Millisecond)
	start := time.Now()
	got := p.Lookup(context.Background(), "8.8.8.8")
	if got != (Result{}) {
		t.Errorf("expected zero Result, got %+v", got)
	}
	if elapsed := time.Since(start); elapsed > 250*time.Millisecond {
		t.Errorf("lookup took %v, timeout not enforced", elapsed)
	}
}

func TestHTTPProvider_SkipsPrivateIPs(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, time.Second)
	for _, ip := range []string{"127.0.0.1", "192.168.0.10", "", "garbage"} {
		if got := p.Lookup(context.Background(), ip); got != (Result{}) {
			t.Errorf("Lookup(%q) = %+v, want zero", ip, got)
		}
	}
	if called {
		t.Error("provider must not be queried for private or invalid IPs")
	}
}

func TestOpenMaxMind_MissingFile(t *testing.T) {
	if _, err := OpenMaxMind("/does/not/exist.mmdb"); err == nil {
		t.Error("expected error for missing mmdb file")
	}
}
