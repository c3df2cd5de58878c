package parser

import (
	"strconv"
	"strings"
	"time"

	"github.com/readabs/readabs-go/pkg/readabs/models"
	"github.com/xuri/excelize/v2"
)

// cellReader decodes cells of one workbook, caching date-format lookups per style.
type cellReader struct {
	f          *excelize.File
	date1904   bool
	dateStyles map[int]bool
}

func newCellReader(f *excelize.File) *cellReader {
	r := &cellReader{f: f, dateStyles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		r.date1904 = *props.Date1904
	}
	return r
}

// extractCells extracts the typed cell grid of a sheet.
// Trailing empty cells of each row are not included; empty rows are kept so row
// positions match the sheet.
func (r *cellReader) extractCells(sheetName string) ([][]models.Cell, error) {
	rows, err := r.f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	result := make([][]models.Cell, len(rows))
	for rowIdx, row := range rows {
		cells := make([]models.Cell, len(row))
		for colIdx, raw := range row {
			if raw == "" {
				continue
			}
			cellName, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return nil, err
			}
			cells[colIdx], err = r.decodeCell(sheetName, cellName, raw)
			if err != nil {
				return nil, err
			}
		}
		result[rowIdx] = cells
	}

	return result, nil
}

// decodeCell types a raw cell value using its stored type and number format.
func (r *cellReader) decodeCell(sheetName, cellName, raw string) (models.Cell, error) {
	cellType, err := r.f.GetCellType(sheetName, cellName)
	if err != nil {
		return models.Cell{}, err
	}

	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeError:
		return models.StringCell(raw), nil
	case excelize.CellTypeBool:
		return models.Cell{Kind: models.CellBool, Bool: raw == "1" || strings.EqualFold(raw, "true"), Text: raw}, nil
	case excelize.CellTypeDate:
		if t, ok := parseISODate(raw); ok {
			return models.DateCell(t), nil
		}
		return models.StringCell(raw), nil
	}

	number, ok := parseNumber(raw)
	if !ok {
		return models.StringCell(raw), nil
	}

	isDate, err := r.isDateStyled(sheetName, cellName)
	if err != nil {
		return models.Cell{}, err
	}
	if isDate {
		t, err := excelize.ExcelDateToTime(number, r.date1904)
		if err == nil {
			// serial fractions carry float noise below a second
			return models.DateCell(t.Round(time.Second)), nil
		}
	}
	return models.NumberCell(number), nil
}

// isDateStyled reports whether the cell's number format renders a date or time.
func (r *cellReader) isDateStyled(sheetName, cellName string) (bool, error) {
	styleID, err := r.f.GetCellStyle(sheetName, cellName)
	if err != nil {
		return false, err
	}
	if isDate, ok := r.dateStyles[styleID]; ok {
		return isDate, nil
	}

	isDate := false
	if style, err := r.f.GetStyle(styleID); err == nil && style != nil {
		if style.CustomNumFmt != nil {
			isDate = isDateFormatCode(*style.CustomNumFmt)
		} else {
			isDate = isBuiltInDateFormat(style.NumFmt)
		}
	}
	r.dateStyles[styleID] = isDate
	return isDate, nil
}

// isBuiltInDateFormat reports whether a built-in number format ID is a date/time format.
func isBuiltInDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22:
		return true
	case id >= 27 && id <= 36:
		return true
	case id >= 45 && id <= 47:
		return true
	case id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormatCode reports whether a custom number format code contains date or time
// tokens outside quoted literals, escapes and bracketed sections.
func isDateFormatCode(code string) bool {
	inQuote := false
	inBracket := false
	escaped := false
	for _, ch := range code {
		switch {
		case escaped:
			escaped = false
		case inQuote:
			if ch == '"' {
				inQuote = false
			}
		case inBracket:
			if ch == ']' {
				inBracket = false
			}
		case ch == '\\' || ch == '_' || ch == '*':
			escaped = true
		case ch == '"':
			inQuote = true
		case ch == '[':
			inBracket = true
		case ch == ';':
			// only the first section formats positive numbers
			return false
		default:
			switch ch {
			case 'y', 'Y', 'm', 'M', 'd', 'D', 'h', 'H', 's', 'S':
				return true
			}
		}
	}
	return false
}

// parseNumber parses a raw cell value as a number.
func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// isoDateLayouts are the forms a "d" typed cell stores its value in. Values without a
// zone are read as UTC.
var isoDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// parseISODate parses the stored text of a "d" typed cell.
func parseISODate(s string) (time.Time, bool) {
	for _, layout := range isoDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
