// Package config loads, normalizes, and validates Bleep configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// BLEEP_ANALYSIS_URL and BLEEP_NTFY_TOPIC. The Config type centralizes every
// knob the daemon and CLI need, allowing state/log directories and the
// analysis service connection to be discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
