// Package probes provides the built-in endpoint probes and wrappers that
// bound how they are called.
//
// HTTPProbe, TCPProbe and DNSProbe report coarse health.ProbeStatus values;
// latency classification is left to the sampler. Wrappers compose around
// any health.Probe:
//
//	p := probes.WithSecrets(
//	    probes.Limit(probes.NewHTTPProbe(nil), bulkhead),
//	    resolver,
//	)
package probes
