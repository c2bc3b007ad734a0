// Package ipcheck flags traffic from datacenter address space and known
// threat IPs. A hit marks the click as bot traffic for analytics; it never
// blocks the redirect.
package ipcheck

import (
	"bufio"
	"context"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	refreshInterval = 24 * time.Hour
	fetchTimeout    = 30 * time.Second
)

// source is one remote list of CIDRs or bare IPs, one entry per line,
// "#" comments ignored.
type source struct {
	name string
	url  string
}

var cidrSources = []source{
	{"datacenters", "https://raw.githubusercontent.com/jhassine/server-ip-addresses/master/data/datacenters.txt"},
	{"vultr", "https://geofeed.constant.com/?text"},
}

var ipSources = []source{
	{"tor-exits", "https://check.torproject.org/torbulkexitlist"},
	{"greensnow", "https://blocklist.greensnow.co/greensnow.txt"},
}

// Checker holds the fetched ranges and refreshes them in the background.
// Lookups are safe for concurrent use.
type Checker struct {
	mu      sync.RWMutex
	ranges  []*net.IPNet
	blocked map[string]bool

	client *http.Client
	stop   chan struct{}
	done   chan struct{}
}

// NewChecker starts the background refresh loop. The first fetch happens
// immediately; until it completes, every lookup misses.
func NewChecker() *Checker {
	c := &Checker{
		blocked: make(map[string]bool),
		client:  &http.Client{Timeout: fetchTimeout},
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go c.run()
	return c
}

// IsDatacenter reports whether ip falls in a known datacenter range, is a
// Tor exit node, or appears on a threat blocklist.
func (c *Checker) IsDatacenter(ip string) bool {
	if c == nil {
		return false
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.blocked[ip] {
		return true
	}
	for _, n := range c.ranges {
		if n.Contains(parsed) {
			return true
		}
	}
	return false
}

// Shutdown stops the refresh loop and waits for it to exit.
func (c *Checker) Shutdown() {
	if c == nil {
		return
	}
	close(c.stop)
	<-c.done
}

func (c *Checker) run() {
	defer close(c.done)
	c.refresh()

	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.refresh()
		case <-c.stop:
			return
		}
	}
}

func (c *Checker) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var failed []string
	var ranges []*net.IPNet
	blocked := make(map[string]bool)

	for _, src := range cidrSources {
		wg.Add(1)
		go func(src source) {
			defer wg.Done()
			nets, err := c.fetchCIDRs(ctx, src.url)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, src.name)
				return
			}
			ranges = append(ranges, nets...)
		}(src)
	}

	for _, src := range ipSources {
		wg.Add(1)
		go func(src source) {
			defer wg.Done()
			ips, err := c.fetchIPs(ctx, src.url)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, src.name)
				return
			}
			for _, ip := range ips {
				blocked[ip] = true
			}
		}(src)
	}

	wg.Wait()

	if len(failed) > 0 {
		log.Printf("ipcheck: partial refresh, failed sources: %s", strings.Join(failed, ", "))
	}

	c.mu.Lock()
	if len(ranges) > 0 {
		c.ranges = ranges
	}
	if len(blocked) > 0 {
		c.blocked = blocked
	}
	c.mu.Unlock()

	log.Printf("ipcheck: loaded %d CIDR ranges, %d blocked IPs", len(ranges), len(blocked))
}

func (c *Checker) fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Checker) fetchCIDRs(ctx context.Context, url string) ([]*net.IPNet, error) {
	body, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return ParseCIDRs(body)
}

func (c *Checker) fetchIPs(ctx context.Context, url string) ([]string, error) {
	body, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return ParseIPs(body)
}

// ParseCIDRs reads one CIDR per line, skipping blanks, comments, and
// unparseable entries.
func ParseCIDRs(r io.Reader) ([]*net.IPNet, error) {
	var nets []*net.IPNet
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, ipNet, err := net.ParseCIDR(line); err == nil {
			nets = append(nets, ipNet)
		}
	}
	return nets, scanner.Err()
}

// ParseIPs reads one IP per line, same skipping rules as ParseCIDRs.
func ParseIPs(r io.Reader) ([]string, error) {
	var ips []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if net.ParseIP(line) != nil {
			ips = append(ips, line)
		}
	}
	return ips, scanner.Err()
}
