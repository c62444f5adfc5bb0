package security

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// IPResolver works out the client address of a request. Forwarding headers are
// only believed when the direct peer is a trusted proxy.
type IPResolver struct {
	trustedProxies []*net.IPNet
}

// NewIPResolver trusts loopback and the private ranges by default.
func NewIPResolver() *IPResolver {
	r := &IPResolver{}
	for _, cidr := range []string{"127.0.0.0/8", "::1/128", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"} {
		if err := r.AddTrustedProxy(cidr); err != nil {
			panic(err)
		}
	}
	return r
}

// AddTrustedProxy adds a trusted proxy network
func (res *IPResolver) AddTrustedProxy(cidr string) error {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return fmt.Errorf("invalid CIDR %s: %w", cidr, err)
	}
	res.trustedProxies = append(res.trustedProxies, network)
	return nil
}

// ClientIP extracts the real client IP, validating forwarded headers.
//
// X-Forwarded-For is read from the right: trusted proxy hops are skipped and the
// first untrusted address is the client. Entries left of it are set by the client
// and ignored. An unparsable hop ends the walk and X-Real-IP is tried instead.
func (res *IPResolver) ClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}

	parsed := net.ParseIP(directIP)
	if parsed == nil || !res.isTrusted(parsed) {
		return directIP
	}

	if ip, ok := res.forwardedFor(r.Header.Values("X-Forwarded-For")); ok {
		return ip
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}
	return directIP
}

func (res *IPResolver) forwardedFor(values []string) (string, bool) {
	hops := strings.Split(strings.Join(values, ","), ",")
	leftmost := ""
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		ip := net.ParseIP(hop)
		if ip == nil {
			return "", false
		}
		if !res.isTrusted(ip) {
			return hop, true
		}
		leftmost = hop
	}
	return leftmost, leftmost != ""
}

func (res *IPResolver) isTrusted(ip net.IP) bool {
	for _, network := range res.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
