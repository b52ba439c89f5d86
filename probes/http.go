package probes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/msusur/healthmonitoring/health"
)

// HTTPProbe checks URLs. It sends HEAD and falls back to GET when the
// server answers 405.
//
// 2xx and 3xx are healthy, 404 and 410 mean the target does not exist, and
// any other status is faulty. A refused connection is offline and an
// unknown host does not exist; other transport errors are returned.
type HTTPProbe struct {
	client    *http.Client
	userAgent string
}

// NewHTTPProbe creates an HTTP probe. A nil client uses a client that does
// not follow redirects, so 3xx answers are reported as they are.
func NewHTTPProbe(client *http.Client) *HTTPProbe {
	if client == nil {
		client = &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}
	return &HTTPProbe{client: client, userAgent: "healthmon"}
}

// WithUserAgent sets the User-Agent header and returns p.
func (p *HTTPProbe) WithUserAgent(ua string) *HTTPProbe {
	if ua != "" {
		p.userAgent = ua
	}
	return p
}

// Name returns "http".
func (p *HTTPProbe) Name() string { return "http" }

// CheckHealth requests address.
func (p *HTTPProbe) CheckHealth(ctx context.Context, address string) (health.ProbeResult, error) {
	code, err := p.do(ctx, http.MethodHead, address)
	if err == nil && code == http.StatusMethodNotAllowed {
		code, err = p.do(ctx, http.MethodGet, address)
	}
	if err != nil {
		if status, ok := classifyNetError(err); ok {
			return health.ProbeResult{
				Status:  status,
				Details: map[string]string{"reason": err.Error()},
			}, nil
		}
		return health.ProbeResult{}, err
	}

	details := map[string]string{
		"code":   strconv.Itoa(code),
		"status": http.StatusText(code),
	}

	switch {
	case code >= 200 && code < 400:
		return health.ProbeResult{Status: health.ProbeHealthy, Details: details}, nil
	case code == http.StatusNotFound || code == http.StatusGone:
		return health.ProbeResult{Status: health.ProbeNotExists, Details: details}, nil
	default:
		return health.ProbeResult{Status: health.ProbeFaulty, Details: details}, nil
	}
}

func (p *HTTPProbe) do(ctx context.Context, method, address string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, address, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	return resp.StatusCode, nil
}

var _ health.Probe = (*HTTPProbe)(nil)
