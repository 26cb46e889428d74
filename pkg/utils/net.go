package utils

import (
	"net"
	"net/http"
	"strings"
)

// ExtractClientIP extracts the real client IP address from HTTP request
// headers. It checks, in priority order: X-Forwarded-For (first IP when
// multiple are present), X-Real-IP, then RemoteAddr with the port stripped.
//
// Needed because the API typically sits behind a reverse proxy, where
// RemoteAddr is the proxy rather than the client.
func ExtractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		xff = strings.TrimSpace(xff)
		// X-Forwarded-For can contain multiple IPs: "client, proxy1, proxy2"
		if idx := strings.IndexByte(xff, ','); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return xff
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// IsPrivateIP reports whether an IP address is loopback, private, or
// link-local. Used to skip lookups and apply laxer rate limits for
// internal traffic.
func IsPrivateIP(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsLinkLocalUnicast()
}
