package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"mangashelf/pkg/models"
)

// exportHeader is the column layout written by WriteXLSX. Every header is
// an alias known to Reconcile, so an exported file imports back unchanged.
var exportHeader = []string{
	"title", "band", "genre", "autor", "verlag", "isbn", "sprache", "coverImageUrl", "read", "double", "new_buy",
}

// ReadXLSX reads the first sheet of a workbook. The first row is the header;
// blank rows are skipped.
func ReadXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(cells) == 0 {
		return []Row{}, nil
	}

	header := make([]string, len(cells[0]))
	for i, h := range cells[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("__EMPTY_%d", i)
		}
		header[i] = h
	}

	rows := make([]Row, 0, len(cells)-1)
	for _, line := range cells[1:] {
		row := Row{}
		blank := true
		for i, v := range line {
			if i >= len(header) {
				break
			}
			if strings.TrimSpace(v) != "" {
				blank = false
			}
			row[header[i]] = v
		}
		if blank {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteXLSX writes records as a single-sheet workbook.
func WriteXLSX(w io.Writer, records []models.Manga) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := make([]any, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, m := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			m.Title, m.Volume, m.Genre, m.Author, m.Publisher, m.ISBN, m.Language, m.CoverImageURL,
			m.IsRead, m.IsDuplicate, m.WantToBuy,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ExportHeader returns the header row used by WriteXLSX and CSV export.
func ExportHeader() []string {
	return append([]string(nil), exportHeader...)
}

// ExportRecord renders a record in ExportHeader order.
func ExportRecord(m models.Manga) []string {
	return []string{
		m.Title, m.Volume, m.Genre, m.Author, m.Publisher, m.ISBN, m.Language, m.CoverImageURL,
		boolCell(m.IsRead), boolCell(m.IsDuplicate), boolCell(m.WantToBuy),
	}
}

func boolCell(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}
