package utils

import (
	"net"
	"net/http"
	"strings"
)

// RequestAddress identifies the client connection for rate limiting and logs.
// It prefers the left-most X-Forwarded-For entry, then X-Real-IP, then the
// host part of RemoteAddr. Unlike ClientIP it never collapses distinct
// clients onto one sentinel.
func RequestAddress(r *http.Request) string {
	if ip := ClientIP(r.Header.Get("X-Forwarded-For")); ip != UnknownIP {
		return ip
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
