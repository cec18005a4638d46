package source

import (
	"errors"
	"strings"
)

// ErrHostNotAllowed marks a fetch aimed at a destination outside the
// configured allow-list.
var ErrHostNotAllowed = errors.New("host not allowed")

// HostAllowed reports whether the hostname matches any allow-listed domain,
// including subdomains.
func HostAllowed(allowed []string, hostname string) bool {
	hostname = strings.ToLower(hostname)
	for _, h := range allowed {
		h = strings.ToLower(h)
		if hostname == h || strings.HasSuffix(hostname, "."+h) {
			return true
		}
	}
	return false
}
