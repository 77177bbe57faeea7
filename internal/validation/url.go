// Package validation provides input and URL validation with SSRF protection.
//
// Gateway URLs are validated against private IP ranges and cloud metadata
// endpoints before any credentialed request is sent. Private ranges can be
// allowed via the CENTRAL_ALLOW_PRIVATE environment variable (any value
// strconv.ParseBool accepts) or SetAllowPrivate(true); metadata endpoints
// stay blocked regardless.
package validation

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
)

var allowPrivate atomic.Bool

// privateNetworks holds pre-parsed private and reserved IP ranges.
var privateNetworks []*net.IPNet

func init() {
	v, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv("CENTRAL_ALLOW_PRIVATE")))
	allowPrivate.Store(v)

	privateCIDRs := []string{
		"10.0.0.0/8",      // RFC1918
		"172.16.0.0/12",   // RFC1918
		"192.168.0.0/16",  // RFC1918
		"100.64.0.0/10",   // RFC6598 shared address space
		"169.254.0.0/16",  // RFC3927 link local
		"127.0.0.0/8",     // loopback
		"192.0.2.0/24",    // RFC5737 documentation
		"198.51.100.0/24", // RFC5737 documentation
		"203.0.113.0/24",  // RFC5737 documentation
		"240.0.0.0/4",     // RFC1112 reserved
		"fc00::/7",        // RFC4193 unique local
		"fe80::/10",       // RFC4291 link local
		"::1/128",         // loopback
		"::/128",          // unspecified
	}
	privateNetworks = make([]*net.IPNet, 0, len(privateCIDRs))
	for _, cidr := range privateCIDRs {
		if _, network, err := net.ParseCIDR(cidr); err == nil {
			privateNetworks = append(privateNetworks, network)
		}
	}
}

// SetAllowPrivate toggles whether private and localhost URLs are accepted.
func SetAllowPrivate(allow bool) {
	allowPrivate.Store(allow)
}

// AllowPrivateEnabled reports the current private-URL policy.
func AllowPrivateEnabled() bool {
	return allowPrivate.Load()
}

// metadataHosts are cloud metadata endpoints that remain blocked even when
// private addresses are allowed.
var metadataHosts = map[string]bool{
	"169.254.169.254":          true,
	"metadata.google.internal": true,
	"metadata":                 true,
}

// ValidateCentralURL validates an API gateway base URL: http(s) scheme,
// non-empty host, no embedded credentials, and no private or metadata
// destination unless explicitly allowed.
func ValidateCentralURL(rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return fmt.Errorf("URL cannot be empty")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme %q: only http and https are allowed", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL must include a host")
	}
	if parsed.User != nil {
		return fmt.Errorf("URL must not contain credentials")
	}

	host := strings.ToLower(parsed.Hostname())
	if metadataHosts[host] {
		return fmt.Errorf("URL host %q is a blocked metadata endpoint", host)
	}

	if AllowPrivateEnabled() {
		return nil
	}

	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return fmt.Errorf("URL host %q is private (set CENTRAL_ALLOW_PRIVATE=1 to allow)", host)
	}
	if ip := net.ParseIP(host); ip != nil && isPrivateIP(ip) {
		return fmt.Errorf("URL host %q is a private address (set CENTRAL_ALLOW_PRIVATE=1 to allow)", host)
	}

	return nil
}

func isPrivateIP(ip net.IP) bool {
	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
