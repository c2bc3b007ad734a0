package geo

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// HTTPProvider queries a hosted geolocation API. The request URL is the
// configured base with the IP appended as the final path segment. Any
// non-2xx status, timeout, or undecodable body yields an empty Result.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

func NewHTTPProvider(baseURL string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

func (p *HTTPProvider) Close() {}

func (p *HTTPProvider) Lookup(ctx context.Context, ipStr string) Result {
	if _, ok := usable(ipStr); !ok {
		return Result{}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/"+ipStr, nil)
	if err != nil {
		return Result{}
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return Result{}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}
	}

	var body struct {
		CountryCode string  `json:"country_code"`
		CountryName string  `json:"country_name"`
		City        string  `json:"city"`
		Region      string  `json:"region"`
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
		Timezone    string  `json:"timezone"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}
	}

	return Result{
		CountryCode: body.CountryCode,
		CountryName: body.CountryName,
		City:        body.City,
		Region:      body.Region,
		Latitude:    body.Latitude,
		Longitude:   body.Longitude,
		Timezone:    body.Timezone,
	}
}
