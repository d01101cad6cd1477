// Package logging wires log/slog with lectern's console and JSON handlers
// and the standardized attribute keys shared across components.
package logging
