package probes

import (
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/msusur/healthmonitoring/health"
)

// classifyNetError maps dial and resolution failures that describe the
// target's state. Other errors are not classified.
func classifyNetError(err error) (health.ProbeStatus, bool) {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return health.ProbeNotExists, true
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return health.ProbeOffline, true
	}
	return "", false
}

// hostOf extracts the host from a URL or host[:port] address.
func hostOf(address string) string {
	address = strings.TrimSpace(address)
	if strings.Contains(address, "://") {
		if u, err := url.Parse(address); err == nil {
			return u.Hostname()
		}
	}
	if host, _, err := net.SplitHostPort(address); err == nil {
		return host
	}
	return address
}
