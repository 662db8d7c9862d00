// Package config loads, normalizes, and validates the TOML configuration
// for the trailer pipeline. Path fields are tilde-expanded and absolute after
// Load; the TMDB credential falls back to the TMDB_API_KEY environment
// variable when absent from the file.
package config
