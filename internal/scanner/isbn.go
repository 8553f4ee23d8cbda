package scanner

import (
	"regexp"
	"strings"
)

var (
	nonISBNChars = regexp.MustCompile(`[^0-9X]`)
	isbn13       = regexp.MustCompile(`^\d{13}$`)
	isbn10       = regexp.MustCompile(`^\d{9}[\dX]$`)
)

// CleanISBN strips separators and reports whether what is left has the
// shape of an ISBN-10 or ISBN-13. Check digits are not verified.
func CleanISBN(s string) (string, bool) {
	clean := nonISBNChars.ReplaceAllString(strings.ToUpper(s), "")
	return clean, isbn13.MatchString(clean) || isbn10.MatchString(clean)
}
