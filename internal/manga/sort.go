package manga

import (
	"sort"
	"time"

	"golang.org/x/text/collate"

	"mangashelf/pkg/models"
	"mangashelf/pkg/utils"
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindBool
	kindTime
)

// sortField describes one sortable attribute, both in memory and as a column.
type sortField struct {
	kind   fieldKind
	column string
	str    func(models.Manga) string
	flag   func(models.Manga) bool
	at     func(models.Manga) time.Time
}

var sortFields = map[string]sortField{
	"title":         {kind: kindString, column: "title", str: func(m models.Manga) string { return m.Title }},
	"volume":        {kind: kindString, column: "volume", str: func(m models.Manga) string { return m.Volume }},
	"genre":         {kind: kindString, column: "genre", str: func(m models.Manga) string { return m.Genre }},
	"author":        {kind: kindString, column: "author", str: func(m models.Manga) string { return m.Author }},
	"publisher":     {kind: kindString, column: "publisher", str: func(m models.Manga) string { return m.Publisher }},
	"isbn":          {kind: kindString, column: "isbn", str: func(m models.Manga) string { return m.ISBN }},
	"language":      {kind: kindString, column: "language", str: func(m models.Manga) string { return m.Language }},
	"coverImageUrl": {kind: kindString, column: "cover_image_url", str: func(m models.Manga) string { return m.CoverImageURL }},
	"isRead":        {kind: kindBool, column: "is_read", flag: func(m models.Manga) bool { return m.IsRead }},
	"isDuplicate":   {kind: kindBool, column: "is_duplicate", flag: func(m models.Manga) bool { return m.IsDuplicate }},
	"wantToBuy":     {kind: kindBool, column: "want_to_buy", flag: func(m models.Manga) bool { return m.WantToBuy }},
	"createdAt":     {kind: kindTime, column: "created_at", at: func(m models.Manga) time.Time { return m.CreatedAt }},
	"updatedAt":     {kind: kindTime, column: "updated_at", at: func(m models.Manga) time.Time { return m.UpdatedAt }},
}

// SortKeys returns the accepted sort keys.
func SortKeys() []string {
	keys := make([]string, 0, len(sortFields))
	for k := range sortFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (f sortField) compare(col *collate.Collator, a, b models.Manga) int {
	switch f.kind {
	case kindBool:
		x, y := f.flag(a), f.flag(b)
		switch {
		case x == y:
			return 0
		case x:
			return 1
		default:
			return -1
		}
	case kindTime:
		return f.at(a).Compare(f.at(b))
	default:
		return col.CompareString(f.str(a), f.str(b))
	}
}

// SortRecords orders items in place by key. The sort is stable, so records
// with equal keys keep their store order in both directions.
func SortRecords(items []models.Manga, key, direction string) {
	f, ok := sortFields[key]
	if !ok {
		return
	}
	col := utils.NewCollator()
	desc := direction == SortDesc

	sort.SliceStable(items, func(i, j int) bool {
		c := f.compare(col, items[i], items[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
}
