package httpapi

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// clientIPResolver picks the address a request is attributed to. Forwarded
// headers are only read when the direct peer is a trusted proxy.
type clientIPResolver struct {
	trusted []netip.Prefix
}

func newClientIPResolver(trusted []netip.Prefix) clientIPResolver {
	return clientIPResolver{trusted: trusted}
}

func (c clientIPResolver) resolve(r *http.Request) string {
	peer := normalizeIP(r.RemoteAddr)
	if !c.isTrusted(peer) {
		return peer
	}

	if ip := normalizeIP(r.Header.Get("Fly-Client-IP")); ip != "" {
		return ip
	}
	if ip := c.fromForwardedFor(r.Header.Values("X-Forwarded-For")); ip != "" {
		return ip
	}
	if ip := normalizeIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return peer
}

// fromForwardedFor walks the chain from the nearest hop and returns the
// first address that is not one of our proxies. Hops further left were
// written by the client and are ignored.
func (c clientIPResolver) fromForwardedFor(values []string) string {
	var hops []string
	for _, v := range values {
		hops = append(hops, strings.Split(v, ",")...)
	}

	for i := len(hops) - 1; i >= 0; i-- {
		ip := normalizeIP(hops[i])
		if ip == "" {
			return ""
		}
		if !c.isTrusted(ip) {
			return ip
		}
	}
	return ""
}

func (c clientIPResolver) isTrusted(ip string) bool {
	if len(c.trusted) == 0 || ip == "" {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range c.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

func normalizeIP(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}
	if strings.Contains(value, ",") {
		value = strings.TrimSpace(strings.Split(value, ",")[0])
	}

	if host, _, err := net.SplitHostPort(value); err == nil {
		value = strings.TrimSpace(host)
	}

	parsed := net.ParseIP(value)
	if parsed == nil {
		return ""
	}
	return parsed.String()
}
