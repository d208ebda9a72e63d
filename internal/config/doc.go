// Package config loads, normalizes, and validates mediatasks configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files strictly so unknown keys surface as
// configuration errors, and honours environment fallbacks such as
// TVDB_API_KEY. Task definitions carry raw per-plugin tables that plugins
// decode into their own typed schemas through DecodePlugin.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical log formats, and clear validation errors.
package config
