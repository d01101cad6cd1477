// Package config loads, normalizes, and validates lectern's TOML
// configuration. Paths are tilde-expanded and made absolute during load so
// the rest of the program never deals with relative or unexpanded paths.
package config
