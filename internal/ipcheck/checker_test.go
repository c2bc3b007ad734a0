package ipcheck

import (
	"net"
	"strings"
	"testing"
)

func TestParseCIDRs(t *testing.T) {
	input := `# comment
10.0.0.0/8

192.0.2.0/24
not-a-cidr
2001:db8::/32
`
	nets, err := ParseCIDRs(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(nets) != 3 {
		t.Fatalf("len = %d, want 3", len(nets))
	}
	if !nets[1].Contains(net.ParseIP("192.0.2.55")) {
		t.Error("192.0.2.0/24 should contain 192.0.2.55")
	}
}

func TestParseIPs(t *testing.T) {
	input := `# exit nodes
198.51.100.7
garbage line
203.0.113.1
`
	ips, err := ParseIPs(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(ips) != 2 {
		t.Fatalf("len = %d, want 2: %v", len(ips), ips)
	}
}

func TestIsDatacenter(t *testing.T) {
	c := &Checker{blocked: map[string]bool{"203.0.113.1": true}}
	_, dcNet, _ := net.ParseCIDR("198.51.100.0/24")
	c.ranges = []*net.IPNet{dcNet}

	tests := []struct {
		ip   string
		want bool
	}{
		{"198.51.100.20", true}, // in a datacenter range
		{"203.0.113.1", true},   // individually blocked
		{"8.8.8.8", false},
		{"not-an-ip", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := c.IsDatacenter(tt.ip); got != tt.want {
			t.Errorf("IsDatacenter(%q) = %v, want %v", tt.ip, got, tt.want)
		}
	}
}

func TestIsDatacenter_NilChecker(t *testing.T) {
	var c *Checker
	if c.IsDatacenter("198.51.100.20") {
		t.Error("nil checker must never flag")
	}
	c.Shutdown() // should not panic
}
