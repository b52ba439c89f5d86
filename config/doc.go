// Package config loads healthmon configuration from a YAML file and
// HEALTHMON_ environment variables.
//
// Defaults live here rather than in the core packages: sampler.Settings and
// friends only validate what they are given.
package config
