// Package stats stores the snapshots produced by the sampler.
//
// Memory keeps a bounded history per endpoint in process. RedisSink keeps
// the same history in Redis so it survives restarts and can be shared by
// several monitors. Multi fans one snapshot out to several sinks.
package stats
