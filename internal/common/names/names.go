// Package names normalizes self-declared display names so that the same
// person typed with composed or decomposed accents, different case or
// stray whitespace is still recognized.
package names

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalize returns the comparison key for a display name
func Normalize(name string) string {
	// cases.Caser is stateful, so build one per call
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(name)))
}

// Equal reports whether two display names refer to the same person
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
