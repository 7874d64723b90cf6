package sheet

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// Fold normalizes a label for comparison: accents are stripped, case is
// folded and inner whitespace collapses to single spaces.
func Fold(input string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, input)
	if err != nil {
		s = input
	}
	s = folder.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// EqualFold reports whether two labels match after Fold.
func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}

// NormalizeText trims and collapses whitespace without changing case.
func NormalizeText(input string) string {
	return strings.Join(strings.Fields(input), " ")
}
