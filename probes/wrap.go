package probes

import (
	"context"
	"net/url"
	"slices"

	"github.com/msusur/healthmonitoring/health"
	"github.com/msusur/healthmonitoring/resilience"
	"github.com/msusur/healthmonitoring/secret"
)

type limited struct {
	health.Probe
	bulkhead *resilience.Bulkhead
}

// Limit bounds the number of concurrent calls to p. A call that cannot get
// a slot fails with resilience.ErrBulkheadFull.
func Limit(p health.Probe, b *resilience.Bulkhead) health.Probe {
	if b == nil {
		return p
	}
	return &limited{Probe: p, bulkhead: b}
}

func (l *limited) CheckHealth(ctx context.Context, address string) (res health.ProbeResult, err error) {
	err = l.bulkhead.Execute(ctx, func(ctx context.Context) error {
		res, err = l.Probe.CheckHealth(ctx, address)
		return err
	})
	return res, err
}

type throttled struct {
	health.Probe
	limiter *resilience.RateLimiter
}

// Throttle puts a token bucket in front of p. A call over the limit fails
// with resilience.ErrRateLimitExceeded.
func Throttle(p health.Probe, rl *resilience.RateLimiter) health.Probe {
	if rl == nil {
		return p
	}
	return &throttled{Probe: p, limiter: rl}
}

func (t *throttled) CheckHealth(ctx context.Context, address string) (res health.ProbeResult, err error) {
	err = t.limiter.Execute(ctx, func(ctx context.Context) error {
		res, err = t.Probe.CheckHealth(ctx, address)
		return err
	})
	return res, err
}

type withSecrets struct {
	health.Probe
	resolver *secret.Resolver
}

// WithSecrets resolves environment variables and secret references in the
// address on every call, so credentials are never stored on the endpoint.
// Resolved values are replaced with secret.Redacted in the returned error
// and detail values, since transport errors quote the address.
func WithSecrets(p health.Probe, r *secret.Resolver) health.Probe {
	return &withSecrets{Probe: p, resolver: r}
}

func (w *withSecrets) CheckHealth(ctx context.Context, address string) (health.ProbeResult, error) {
	resolved, values, err := w.resolver.ResolveValueTracked(ctx, address)
	if err != nil {
		return health.ProbeResult{}, err
	}
	res, err := w.Probe.CheckHealth(ctx, resolved)
	if len(values) == 0 {
		return res, err
	}

	values = withEscapedForms(values)
	if res.Details != nil {
		details := make(map[string]string, len(res.Details))
		for k, v := range res.Details {
			details[k] = secret.Redact(v, values)
		}
		res.Details = details
	}
	if err != nil {
		err = &redactedError{msg: secret.Redact(err.Error(), values), err: err}
	}
	return res, err
}

// withEscapedForms adds the URL-escaped spelling of each value, which is
// how a value shows up once it has been through url.URL.
func withEscapedForms(values []string) []string {
	out := slices.Clone(values)
	for _, v := range values {
		for _, e := range []string{url.QueryEscape(v), url.PathEscape(v)} {
			if e != v && !slices.Contains(out, e) {
				out = append(out, e)
			}
		}
	}
	return out
}

// redactedError keeps the chain of err for errors.Is and errors.As while
// reporting a message with secrets removed.
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }
