// Package config loads, normalizes, and validates sieve configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SIEVE_ORACLE_URL. The Config type centralizes every knob the CLI and the
// validation engine need: identifier column resolution, oracle endpoint,
// worker pool size, autosave cadence, and the ambient log and notification
// settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
