package utils

import (
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// CollationName is the name the SQLite driver registers NewCollator under.
const CollationName = "MANGA_LOCALE"

// NewCollator returns the collator used for every locale aware string
// comparison. A Collator is not safe for concurrent use; create one per
// sort or per connection.
func NewCollator() *collate.Collator {
	return collate.New(language.German)
}

// FoldCase is the case folding used by search and genre matching.
func FoldCase(s string) string {
	return strings.ToLower(s)
}
