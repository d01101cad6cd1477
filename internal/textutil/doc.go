// Package textutil provides small text helpers shared across components:
// filesystem-safe name sanitization and case-folded matching.
package textutil
