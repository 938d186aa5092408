// Package config loads, normalizes, and validates mediasyncdel configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// MEDIASYNCDEL_WEBHOOK_TOKEN. The [sync] section carries the operator toggles
// that gate deletion propagation; UpdateSync rewrites only that section so the
// handler's self-disable preserves everything else in the file.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
