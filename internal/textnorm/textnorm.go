// internal/textnorm/textnorm.go
//
// Canonical form for guesses and target words.
// Accented targets ("éléphant") must be typeable without diacritics, so every
// comparison goes through Normalize first.

package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lower-cases s, decomposes it (NFD), drops combining marks and
// trims surrounding whitespace. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	// transform.Chain keeps internal buffers, so build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		out = strings.ToLower(s)
	}
	return strings.TrimSpace(out)
}

// Equal reports whether a and b are the same word once normalized.
func Equal(a, b string) bool { return Normalize(a) == Normalize(b) }
