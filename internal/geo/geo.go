// Package geo resolves client IPs to location data. Enrichment is strictly
// best-effort: every failure mode (no backend configured, private IP,
// provider timeout, malformed payload) degrades to a zero Result.
package geo

import (
	"context"
	"net"
)

type Result struct {
	CountryCode string
	CountryName string
	City        string
	Region      string
	Latitude    float64
	Longitude   float64
	Timezone    string
}

// Provider resolves an IP to geo data. Implementations never return errors
// to callers; absence of enrichment is a valid steady state.
type Provider interface {
	Lookup(ctx context.Context, ip string) Result
	Close()
}

// Noop is the provider used when no geo backend is configured.
type Noop struct{}

func (Noop) Lookup(context.Context, string) Result { return Result{} }
func (Noop) Close()                                {}

// usable reports whether an IP is worth looking up. Loopback, private, and
// unparseable addresses never resolve to anything meaningful.
func usable(ipStr string) (net.IP, bool) {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return nil, false
	}
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() {
		return nil, false
	}
	return ip, true
}
