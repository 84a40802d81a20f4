// Package textnorm folds user and spreadsheet text into a comparable form.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics strips combining marks, so "Óxido" becomes "Oxido".
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Fold lower-cases, removes diacritics and trims.
func Fold(s string) string {
	return strings.TrimSpace(strings.ToLower(RemoveDiacritics(s)))
}

// Tokens returns the folded alphanumeric words of s. Characters such as '/'
// inside "80/20" are kept when keep reports true for them.
func Tokens(s string, keep func(rune) bool) []string {
	return strings.FieldsFunc(Fold(s), func(r rune) bool {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
		return keep == nil || !keep(r)
	})
}

// Words is Fold followed by splitting on anything that is not a letter or digit,
// re-joined with single spaces.
func Words(s string) string {
	return strings.Join(Tokens(s, nil), " ")
}
