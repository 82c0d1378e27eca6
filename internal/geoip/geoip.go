// Package geoip resolves a click's country of origin.
//
// There is no local geolocation database; deployments sit behind an edge
// proxy (Cloudflare or similar) that stamps the visitor country on the
// request, so the resolver trusts that header when present and otherwise
// reports "Unknown". Private and unparseable addresses are always "Unknown".
package geoip

import (
	"net"
	"strings"
)

// UnknownCountry is the fallback value when no country can be determined.
const UnknownCountry = "Unknown"

// CountryHeader is the edge-supplied country header we honor, in the form
// Cloudflare uses (ISO 3166-1 alpha-2, "XX" when the edge itself can't tell).
const CountryHeader = "CF-IPCountry"

// Resolver maps an IP address and an optional edge-supplied country hint to
// a country string.
type Resolver interface {
	Country(ip, hint string) string
}

// HeaderResolver implements Resolver using the edge country hint.
type HeaderResolver struct{}

// NewResolver returns the default resolver.
func NewResolver() *HeaderResolver {
	return &HeaderResolver{}
}

// Country returns the country for ip. The hint wins when it is a usable
// two-letter code; otherwise the address is inspected only to rule out
// private/loopback traffic, which can never be geolocated.
func (r *HeaderResolver) Country(ip, hint string) string {
	hint = strings.ToUpper(strings.TrimSpace(hint))
	if len(hint) == 2 && hint != "XX" {
		return hint
	}

	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil || parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() {
		return UnknownCountry
	}

	// Public address but no edge hint: nothing to look it up against.
	return UnknownCountry
}
