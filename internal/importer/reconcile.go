package importer

import (
	"errors"
	"fmt"

	"mangashelf/internal/manga"
	"mangashelf/pkg/models"
)

// Row is one spreadsheet row keyed by its header cells.
type Row map[string]any

// column maps a logical field to the header spellings accepted for it,
// checked case-sensitively in order.
type column struct {
	field   string
	aliases []string
}

var columns = []column{
	{field: "title", aliases: []string{"title", "Title", "titel", "Titel"}},
	{field: "volume", aliases: []string{"band", "Band", "volume", "Volume"}},
	{field: "genre", aliases: []string{"genre", "Genre"}},
	{field: "author", aliases: []string{"autor", "Autor", "author", "Author"}},
	{field: "publisher", aliases: []string{"verlag", "Verlag", "publisher", "Publisher"}},
	{field: "isbn", aliases: []string{"isbn", "ISBN"}},
	{field: "language", aliases: []string{"sprache", "Sprache", "language", "Language"}},
	{field: "coverImageUrl", aliases: []string{"coverImageUrl", "cover"}},
	{field: "isRead", aliases: []string{"read", "Read"}},
	{field: "isDuplicate", aliases: []string{"double", "Double"}},
	{field: "wantToBuy", aliases: []string{"new_buy", "New_Buy", "newbuy"}},
}

// Result is the outcome of reconciling a sheet.
type Result struct {
	Records []models.MangaInput
	Rows    []int // reported row number of each accepted record
	Errors  []string
}

// RowNumber is how row i (0-based, header excluded) is reported to users:
// its 1-based position plus two.
func RowNumber(i int) int { return i + 1 + 2 }

// Reconcile turns rows into normalized candidates. Rows without a title
// are reported and skipped; every other row is accepted in input order.
func Reconcile(rows []Row) Result {
	res := Result{
		Records: make([]models.MangaInput, 0, len(rows)),
		Errors:  []string{},
	}
	for i, row := range rows {
		in, err := manga.Normalize(resolve(row))
		if err != nil {
			var verr *manga.ValidationError
			if errors.As(err, &verr) {
				res.Errors = append(res.Errors, fmt.Sprintf("Row %d: %s", RowNumber(i), verr.Error()))
			} else {
				res.Errors = append(res.Errors, fmt.Sprintf("Row %d: %v", RowNumber(i), err))
			}
			continue
		}
		res.Records = append(res.Records, in)
		res.Rows = append(res.Rows, RowNumber(i))
	}
	return res
}

// resolve picks, per logical field, the first alias with a non-blank value.
func resolve(row Row) manga.Fields {
	fields := manga.Fields{}
	for _, col := range columns {
		for _, alias := range col.aliases {
			v, ok := row[alias]
			if !ok || manga.Stringify(v) == "" {
				continue
			}
			fields[col.field] = v
			break
		}
	}
	return fields
}
