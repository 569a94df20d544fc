// Package config loads, normalizes, and validates vidingest configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// VIDINGEST_CACHE_DIR. The Config type centralizes every knob the CLI and the
// ingest pipeline need: where the cache and catalog live, which ffmpeg/ffprobe
// binaries to run, and the default sampling options for new ingests.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
