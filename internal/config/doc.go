// Package config loads, normalizes, and validates the TOML configuration for
// the combiner. Secrets are taken from the environment when present so CI
// runs never need credential files on disk.
package config
