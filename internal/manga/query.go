package manga

import (
	"fmt"
	"strings"

	"mangashelf/pkg/models"
	"mangashelf/pkg/utils"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 1000
)

// Status filter modes.
const (
	StatusRead   = "read"
	StatusUnread = "unread"
	StatusDouble = "double"
	StatusNewBuy = "newbuy"
)

const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Query selects, orders and pages a subset of the collection.
// Empty string fields are no-ops.
type Query struct {
	Search    string
	Genre     string
	Author    string
	Publisher string
	Language  string
	Volume    string
	Status    string

	SortKey       string
	SortDirection string

	Page     int
	PageSize int
}

// Normalized trims the query, applies paging defaults and validates the sort.
func (q Query) Normalized() (Query, error) {
	q.Search = strings.TrimSpace(q.Search)
	q.Genre = strings.TrimSpace(q.Genre)
	q.Status = strings.ToLower(strings.TrimSpace(q.Status))
	q.SortKey = strings.TrimSpace(q.SortKey)
	q.SortDirection = strings.ToLower(strings.TrimSpace(q.SortDirection))

	if q.SortKey != "" {
		if _, ok := sortFields[q.SortKey]; !ok {
			return q, BadInput(fmt.Sprintf("Invalid sort key: %s (expected one of %s)",
				q.SortKey, strings.Join(SortKeys(), ", ")))
		}
	}
	if q.SortDirection != "" && q.SortDirection != SortAsc && q.SortDirection != SortDesc {
		return q, BadInput("Invalid sort direction: " + q.SortDirection)
	}

	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	return q, nil
}

// Sorted reports whether both a sort key and a direction are set.
func (q Query) Sorted() bool {
	return q.SortKey != "" && q.SortDirection != ""
}

// Offset of the first item of the requested page.
func (q Query) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// Run evaluates q over records in memory. records is not modified and
// is taken to be in store order.
func Run(records []models.Manga, q Query) (models.Page, error) {
	q, err := q.Normalized()
	if err != nil {
		return models.Page{}, err
	}

	matched := Filter(records, q)
	if q.Sorted() {
		SortRecords(matched, q.SortKey, q.SortDirection)
	}
	return Paginate(matched, len(matched), q), nil
}

// Filter returns the records passing the search, field and status stages.
func Filter(records []models.Manga, q Query) []models.Manga {
	search := utils.FoldCase(q.Search)
	genre := utils.FoldCase(q.Genre)

	out := make([]models.Manga, 0, len(records))
	for _, m := range records {
		if search != "" &&
			!strings.Contains(utils.FoldCase(m.Title), search) &&
			!strings.Contains(utils.FoldCase(m.Author), search) &&
			!strings.Contains(utils.FoldCase(m.Genre), search) {
			continue
		}
		if genre != "" && !strings.Contains(utils.FoldCase(m.Genre), genre) {
			continue
		}
		if q.Author != "" && m.Author != q.Author {
			continue
		}
		if q.Publisher != "" && m.Publisher != q.Publisher {
			continue
		}
		if q.Language != "" && m.Language != q.Language {
			continue
		}
		if q.Volume != "" && m.Volume != q.Volume {
			continue
		}
		if !MatchStatus(m, q.Status) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// MatchStatus applies the status stage. Unknown modes match everything.
func MatchStatus(m models.Manga, status string) bool {
	switch status {
	case StatusRead:
		return m.IsRead
	case StatusUnread:
		return !m.IsRead
	case StatusDouble:
		return m.IsDuplicate
	case StatusNewBuy:
		return m.WantToBuy
	default:
		return true
	}
}

// Paginate cuts the requested page out of an already filtered and sorted
// slice. total is the pre-pagination count.
func Paginate(items []models.Manga, total int, q Query) models.Page {
	page := models.Page{
		Items:    []models.Manga{},
		Total:    total,
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	if q.PageSize > 0 {
		page.TotalPages = (total + q.PageSize - 1) / q.PageSize
	}

	off := q.Offset()
	if off < 0 || off >= len(items) {
		return page
	}
	end := off + q.PageSize
	if end > len(items) {
		end = len(items)
	}
	page.Items = append(page.Items, items[off:end]...)
	return page
}
