package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
)

// TrustedRealIP rewrites r.RemoteAddr from X-Real-IP or the first
// X-Forwarded-For entry, but only when the connection comes from one of the
// trusted proxy networks. Entries may be CIDRs or bare addresses.
//
// With no trusted proxies every forwarding header is ignored, so clients
// cannot pick their own rate limit bucket.
func TrustedRealIP(trusted []string) func(http.Handler) http.Handler {
	nets := parseNetworks(trusted)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isTrusted(extractIP(r.RemoteAddr), nets) {
				if ip := forwardedIP(r.Header); ip != nil {
					r.RemoteAddr = ip.String()
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func parseNetworks(cidrs []string) []*net.IPNet {
	var nets []*net.IPNet
	for _, cidr := range cidrs {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}
		if _, network, err := net.ParseCIDR(cidr); err == nil {
			nets = append(nets, network)
			continue
		}
		ip := net.ParseIP(cidr)
		if ip == nil {
			slog.Warn("realip: skipping invalid trusted proxy", "cidr", cidr)
			continue
		}
		bits := 128
		if ip.To4() != nil {
			bits = 32
		}
		nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}
	return nets
}

// forwardedIP returns the client address a proxy reported, or nil when the
// headers are absent or not an IP.
func forwardedIP(h http.Header) net.IP {
	if rip := strings.TrimSpace(h.Get("X-Real-IP")); rip != "" {
		return net.ParseIP(rip)
	}
	xff := h.Get("X-Forwarded-For")
	if xff == "" {
		return nil
	}
	first, _, _ := strings.Cut(xff, ",")
	return net.ParseIP(strings.TrimSpace(first))
}

// extractIP parses host:port or a bare address.
func extractIP(addr string) net.IP {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return net.ParseIP(host)
	}
	return net.ParseIP(addr)
}

func isTrusted(ip net.IP, trusted []*net.IPNet) bool {
	if ip == nil {
		return false
	}
	for _, network := range trusted {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP returns the host part of r.RemoteAddr.
func ClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
