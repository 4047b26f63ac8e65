// Package config loads, normalizes, and validates newscast configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// NEWSCAST_LLM_API_KEY. The Config type centralizes every knob the pipeline
// and CLI need, so feed paths, source lists, and service credentials are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
