package probes

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/msusur/healthmonitoring/health"
)

// TCPProbe checks that a host:port accepts connections.
type TCPProbe struct {
	dialer net.Dialer
}

// NewTCPProbe creates a TCP probe.
func NewTCPProbe() *TCPProbe {
	return &TCPProbe{}
}

// Name returns "tcp".
func (p *TCPProbe) Name() string { return "tcp" }

// CheckHealth dials address, which may carry a "tcp://" prefix.
func (p *TCPProbe) CheckHealth(ctx context.Context, address string) (health.ProbeResult, error) {
	address = strings.TrimPrefix(address, "tcp://")
	if _, _, err := net.SplitHostPort(address); err != nil {
		return health.ProbeResult{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}

	conn, err := p.dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		if status, ok := classifyNetError(err); ok {
			return health.ProbeResult{
				Status:  status,
				Details: map[string]string{"reason": err.Error()},
			}, nil
		}
		return health.ProbeResult{}, err
	}
	defer conn.Close()

	return health.ProbeResult{
		Status:  health.ProbeHealthy,
		Details: map[string]string{"remote": conn.RemoteAddr().String()},
	}, nil
}

var _ health.Probe = (*TCPProbe)(nil)
