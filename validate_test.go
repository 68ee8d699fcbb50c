package recipon

import (
	"context"
	"errors"
	"net/netip"
	"testing"
)

func staticLookup(addrs ...string) lookupFunc {
	parsed := make([]netip.Addr, 0, len(addrs))
	for _, a := range addrs {
		parsed = append(parsed, netip.MustParseAddr(a))
	}
	return func(ctx context.Context, host string) ([]netip.Addr, error) {
		return parsed, nil
	}
}

func failingLookup(ctx context.Context, host string) ([]netip.Addr, error) {
	return nil, errors.New("no such host")
}

func TestIsSafePublicURL(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		lookup lookupFunc
		want   bool
	}{
		{
			name:   "public hostname",
			url:    "https://example.com/recipe/123",
			lookup: staticLookup("93.184.216.34"),
			want:   true,
		},
		{
			name:   "public ipv6 hostname",
			url:    "https://example.com/",
			lookup: staticLookup("2606:2800:220:1::1"),
			want:   true,
		},
		{
			name:   "hostname resolving to loopback",
			url:    "http://evil.example/",
			lookup: staticLookup("127.0.0.1"),
			want:   false,
		},
		{
			name:   "hostname resolving to private range",
			url:    "http://internal.example/",
			lookup: staticLookup("10.1.2.3"),
			want:   false,
		},
		{
			name:   "hostname resolving to link-local metadata address",
			url:    "http://metadata.example/",
			lookup: staticLookup("169.254.169.254"),
			want:   false,
		},
		{
			name:   "first answer decides",
			url:    "http://mixed.example/",
			lookup: staticLookup("192.168.0.5", "93.184.216.34"),
			want:   false,
		},
		{
			name:   "lookup failure is unsafe",
			url:    "http://nonexistent.example/",
			lookup: failingLookup,
			want:   false,
		},
		{
			name:   "literal loopback",
			url:    "http://127.0.0.1:8080/admin",
			lookup: failingLookup,
			want:   false,
		},
		{
			name:   "literal private address",
			url:    "http://192.168.1.1/",
			lookup: failingLookup,
			want:   false,
		},
		{
			name:   "literal ipv6 loopback",
			url:    "http://[::1]/",
			lookup: failingLookup,
			want:   false,
		},
		{
			name:   "literal unspecified",
			url:    "http://0.0.0.0/",
			lookup: failingLookup,
			want:   false,
		},
		{
			name:   "literal reserved class e",
			url:    "http://240.0.0.1/",
			lookup: failingLookup,
			want:   false,
		},
		{
			name:   "literal documentation range",
			url:    "http://192.0.2.10/",
			lookup: failingLookup,
			want:   false,
		},
		{
			name:   "ipv4-mapped ipv6 loopback",
			url:    "http://[::ffff:127.0.0.1]/",
			lookup: failingLookup,
			want:   false,
		},
		{
			name:   "literal public address",
			url:    "http://93.184.216.34/",
			lookup: failingLookup,
			want:   true,
		},
		{
			name:   "localhost hostname",
			url:    "http://localhost:9000/",
			lookup: staticLookup("93.184.216.34"),
			want:   false,
		},
		{
			name:   "ftp scheme",
			url:    "ftp://example.com/file",
			lookup: staticLookup("93.184.216.34"),
			want:   false,
		},
		{
			name:   "file scheme",
			url:    "file:///etc/passwd",
			lookup: staticLookup("93.184.216.34"),
			want:   false,
		},
		{
			name:   "missing host",
			url:    "http:///path-only",
			lookup: staticLookup("93.184.216.34"),
			want:   false,
		},
		{
			name:   "empty string",
			url:    "",
			lookup: staticLookup("93.184.216.34"),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isSafePublicURL(context.Background(), tt.url, tt.lookup)
			if got != tt.want {
				t.Errorf("isSafePublicURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestAddrIsPublicReservedRanges(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"8.8.8.8", true},
		{"1.1.1.1", true},
		{"0.0.0.1", false},
		{"100.100.100.100", false},
		{"198.18.0.1", false},
		{"198.19.255.255", false},
		{"198.51.100.7", false},
		{"203.0.113.200", false},
		{"224.0.0.1", false},
		{"255.255.255.255", false},
		{"2001:db8::1", false},
		{"100::1", false},
		{"fe80::1", false},
		{"fc00::1", false},
		{"2606:2800:220:1::1", true},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			got := addrIsPublic(netip.MustParseAddr(tt.addr))
			if got != tt.want {
				t.Errorf("addrIsPublic(%s) = %v, want %v", tt.addr, got, tt.want)
			}
		})
	}
}
