package probes

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/msusur/healthmonitoring/health"
)

// DNSProbe checks that a name resolves. The address may be a bare host
// name or a URL.
type DNSProbe struct {
	resolver *net.Resolver
}

// NewDNSProbe creates a DNS probe. A nil resolver uses the system resolver.
func NewDNSProbe(resolver *net.Resolver) *DNSProbe {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	return &DNSProbe{resolver: resolver}
}

// Name returns "dns".
func (p *DNSProbe) Name() string { return "dns" }

// CheckHealth resolves the host of address.
func (p *DNSProbe) CheckHealth(ctx context.Context, address string) (health.ProbeResult, error) {
	host := hostOf(address)
	if host == "" {
		return health.ProbeResult{}, ErrInvalidAddress
	}

	addrs, err := p.resolver.LookupHost(ctx, host)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return health.ProbeResult{
				Status:  health.ProbeNotExists,
				Details: map[string]string{"reason": err.Error()},
			}, nil
		}
		return health.ProbeResult{}, err
	}

	return health.ProbeResult{
		Status:  health.ProbeHealthy,
		Details: map[string]string{"addresses": strings.Join(addrs, ",")},
	}, nil
}

var _ health.Probe = (*DNSProbe)(nil)
