package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/readabs/readabs-go/pkg/readabs/models"
)

// DataSheetMarker is the substring that identifies observation sheets by name.
const DataSheetMarker = "Data"

// unnamedPrefix is the header given to columns whose header cell is blank.
const unnamedPrefix = "Unnamed: "

var (
	// ErrNoDataSheets indicates a workbook without any sheet named like a data sheet.
	ErrNoDataSheets = errors.New("no data sheets")
	// ErrMissingDateColumn indicates a sheet whose first column has a header, so there
	// is no implicit index column to rename to Date.
	ErrMissingDateColumn = errors.New("missing date column")
)

// DataSheets returns the sheets whose name contains DataSheetMarker, in workbook order.
func DataSheets(wb *models.Workbook) ([]models.RawSheet, error) {
	var sheets []models.RawSheet
	for _, s := range wb.Sheets {
		if strings.Contains(s.Name, DataSheetMarker) {
			sheets = append(sheets, s)
		}
	}
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w (sheets: %s)", ErrNoDataSheets, strings.Join(wb.SheetNames(), ", "))
	}
	return sheets, nil
}

// HeaderNames returns the column names of a sheet taken from its first row.
// Blank header cells are named "Unnamed: <index>" and repeated names get ".1", ".2", ...
// suffixes; a suffixed name that is already taken is suffixed again ("A.1.1").
func HeaderNames(sheet models.RawSheet) []string {
	width := sheet.Width()
	names := make([]string, width)
	if len(sheet.Rows) == 0 {
		return names
	}

	header := sheet.Rows[0]
	counts := make(map[string]int, width)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(header) {
			name = strings.TrimSpace(header[i].String())
		}
		if name == "" {
			name = unnamedPrefix + strconv.Itoa(i)
		}
		// a suffixed name may itself be taken, so keep suffixing until it is free
		n := counts[name]
		for n > 0 {
			counts[name] = n + 1
			name = name + "." + strconv.Itoa(n)
			n = counts[name]
		}
		counts[name] = n + 1
		names[i] = name
	}
	return names
}

// NormalizeSheet renames the implicit index column to Date and keeps only rows whose
// Date cell holds a date. Labelled rows above the data (Unit, Series ID, ...) become
// column attributes.
func NormalizeSheet(sheet models.RawSheet) (*models.NormalizedSheet, error) {
	names := HeaderNames(sheet)
	if len(names) == 0 || !strings.HasPrefix(names[0], unnamedPrefix) {
		found := ""
		if len(names) > 0 {
			found = names[0]
		}
		return nil, fmt.Errorf("%w in sheet %q (first column %q)", ErrMissingDateColumn, sheet.Name, found)
	}

	out := &models.NormalizedSheet{
		Name:    sheet.Name,
		Columns: make([]models.Column, len(names)-1),
	}
	for i, name := range names[1:] {
		out.Columns[i] = models.Column{Name: name, Sheet: sheet.Name}
	}

	for _, row := range sheet.Rows[1:] {
		if len(row) == 0 {
			continue
		}
		if row[0].IsDate() {
			out.Rows = append(out.Rows, models.Row{
				Date:   row[0].Time,
				Values: padCells(row[1:], len(out.Columns)),
			})
			continue
		}
		if row[0].Kind != models.CellString {
			continue
		}
		label := strings.TrimSpace(row[0].Text)
		if label == "" {
			continue
		}
		for i, cell := range row[1:] {
			if cell.IsEmpty() || i >= len(out.Columns) {
				continue
			}
			col := &out.Columns[i]
			if col.Attributes == nil {
				col.Attributes = make(map[string]string)
			}
			col.Attributes[label] = cell.String()
		}
	}

	return out, nil
}

// padCells returns a copy of cells of exactly n entries.
func padCells(cells []models.Cell, n int) []models.Cell {
	out := make([]models.Cell, n)
	copy(out, cells)
	return out
}
