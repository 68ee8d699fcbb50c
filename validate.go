package recipon

import (
	"context"
	"net"
	"net/netip"
	"net/url"
)

// lookupFunc resolves a hostname to IP addresses. Injectable so tests can
// exercise the validator without real DNS.
type lookupFunc func(ctx context.Context, host string) ([]netip.Addr, error)

func defaultLookup(ctx context.Context, host string) ([]netip.Addr, error) {
	return net.DefaultResolver.LookupNetIP(ctx, "ip", host)
}

// reservedPrefixes covers ranges netip.Addr has no predicate for
var reservedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("192.0.2.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("198.51.100.0/24"),
	netip.MustParsePrefix("203.0.113.0/24"),
	netip.MustParsePrefix("240.0.0.0/4"),
	netip.MustParsePrefix("100::/64"),
	netip.MustParsePrefix("2001:db8::/32"),
}

// isSafePublicURL reports whether rawURL is an http(s) URL whose host
// resolves to a public address. Anything that cannot be parsed or resolved
// is unsafe (fail closed).
//
// The hostname is resolved here and the HTTP client resolves it again when
// connecting, so a DNS answer that changes between the two steps can bypass
// the check. See DESIGN.md.
func isSafePublicURL(ctx context.Context, rawURL string, lookup lookupFunc) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := u.Hostname()
	if host == "" || host == "localhost" {
		return false
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		return addrIsPublic(addr)
	}

	addrs, err := lookup(ctx, host)
	if err != nil || len(addrs) == 0 {
		return false
	}
	// Like the resolver the HTTP client uses, take the first answer
	return addrIsPublic(addrs[0])
}

func addrIsPublic(addr netip.Addr) bool {
	addr = addr.Unmap()
	if addr.IsPrivate() || addr.IsLoopback() || addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() || addr.IsMulticast() || addr.IsUnspecified() {
		return false
	}
	for _, p := range reservedPrefixes {
		if p.Contains(addr) {
			return false
		}
	}
	return true
}
