package webhook

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// MaxURLLength is the longest webhook URL accepted
const MaxURLLength = 2048

// ErrBlockedTarget marks a URL that resolves to a disallowed address
var ErrBlockedTarget = errors.New("webhook target is not allowed")

var blockedNets []*net.IPNet

func init() {
	for _, cidr := range []string{
		"0.0.0.0/8",
		"10.0.0.0/8",
		"100.64.0.0/10",
		"127.0.0.0/8",
		"169.254.0.0/16",
		"172.16.0.0/12",
		"192.0.0.0/24",
		"192.0.2.0/24",
		"192.168.0.0/16",
		"198.18.0.0/15",
		"198.51.100.0/24",
		"203.0.113.0/24",
		"224.0.0.0/4",
		"240.0.0.0/4",
		"::/128",
		"::1/128",
		"64:ff9b::/96",   // NAT64, embeds IPv4
		"64:ff9b:1::/48", // local-use NAT64
		"2002::/16",      // 6to4, embeds IPv4
		"fc00::/7",
		"fe80::/10",
	} {
		if _, block, err := net.ParseCIDR(cidr); err == nil {
			blockedNets = append(blockedNets, block)
		}
	}
}

// IsPrivateIP reports whether ip is loopback, private, link-local or otherwise reserved.
// A nil IP counts as private.
func IsPrivateIP(ip net.IP) bool {
	if ip == nil {
		return true
	}
	if v4 := ip.To4(); v4 != nil {
		ip = v4
	}
	for _, block := range blockedNets {
		if block.Contains(ip) {
			return true
		}
	}
	return false
}

// ValidateURL checks scheme and host and resolves the host, rejecting
// any target that maps to a private or reserved address.
func ValidateURL(ctx context.Context, rawURL string) error {
	if len(rawURL) > MaxURLLength {
		return fmt.Errorf("%w: URL exceeds %d characters", ErrBlockedTarget, MaxURLLength)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: invalid URL", ErrBlockedTarget)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: URL must use http or https", ErrBlockedTarget)
	}

	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: URL must have a hostname", ErrBlockedTarget)
	}

	lower := strings.ToLower(host)
	if lower == "localhost" || strings.HasSuffix(lower, ".localhost") {
		return fmt.Errorf("%w: localhost is not allowed", ErrBlockedTarget)
	}

	if ip := net.ParseIP(host); ip != nil {
		if IsPrivateIP(ip) {
			return fmt.Errorf("%w: private or reserved address", ErrBlockedTarget)
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return fmt.Errorf("%w: cannot resolve %q", ErrBlockedTarget, host)
	}
	if len(addrs) == 0 {
		return fmt.Errorf("%w: %q has no addresses", ErrBlockedTarget, host)
	}
	for _, a := range addrs {
		if IsPrivateIP(a.IP) {
			return fmt.Errorf("%w: %q resolves to a private address", ErrBlockedTarget, host)
		}
	}
	return nil
}

// guardedDialContext re-checks resolved addresses at connect time so a DNS
// answer that changes after ValidateURL cannot reach a private address.
func guardedDialContext(dialer *net.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q: %w", addr, err)
		}

		addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", host, err)
		}
		for _, a := range addrs {
			if IsPrivateIP(a.IP) {
				return nil, fmt.Errorf("%w: %s (from %q)", ErrBlockedTarget, a.IP, host)
			}
		}

		var lastErr error
		for _, a := range addrs {
			conn, dialErr := dialer.DialContext(ctx, network, net.JoinHostPort(a.IP.String(), port))
			if dialErr == nil {
				return conn, nil
			}
			lastErr = dialErr
		}
		if lastErr == nil {
			lastErr = fmt.Errorf("no addresses for %q", host)
		}
		return nil, lastErr
	}
}
