package textutil

import (
	"strings"

	"golang.org/x/text/cases"
)

var caseFolder = cases.Fold()

// FoldContains reports whether haystack contains needle under Unicode case
// folding, for fuzzy user-facing matching of section labels.
func FoldContains(haystack, needle string) bool {
	if strings.TrimSpace(needle) == "" {
		return true
	}
	return strings.Contains(caseFolder.String(haystack), caseFolder.String(needle))
}
