package models

import "time"

// Workbook is a decoded spreadsheet payload.
type Workbook struct {
	// Sheets holds the worksheets in workbook order.
	Sheets []RawSheet `json:"sheets"`
}

// SheetNames returns the worksheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.Sheets))
	for i, s := range w.Sheets {
		names[i] = s.Name
	}
	return names
}

// MergedTable is the set of data sheets of one workbook joined on Date.
type MergedTable struct {
	// Title is the catalogue table title the workbook was fetched for.
	Title string `json:"title"`
	// URL is the download link of the workbook.
	URL string `json:"url"`
	// Columns lists the non-key columns of all merged sheets.
	Columns []Column `json:"columns"`
	// Rows holds one row per Date common to every merged sheet.
	Rows []Row `json:"rows"`
}

// Len returns the number of rows.
func (t *MergedTable) Len() int {
	return len(t.Rows)
}

// ColumnNames returns the header of the table, Date first.
func (t *MergedTable) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns)+1)
	names = append(names, DateColumn)
	for _, c := range t.Columns {
		names = append(names, c.Name)
	}
	return names
}

// ColumnIndex returns the position of the named column within Row.Values, or -1.
func (t *MergedTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Dates returns the Date column.
func (t *MergedTable) Dates() []time.Time {
	dates := make([]time.Time, len(t.Rows))
	for i, r := range t.Rows {
		dates[i] = r.Date
	}
	return dates
}

// Series returns the cells of the named column, or false if no such column exists.
func (t *MergedTable) Series(name string) ([]Cell, bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	cells := make([]Cell, len(t.Rows))
	for i, r := range t.Rows {
		if idx < len(r.Values) {
			cells[i] = r.Values[idx]
		}
	}
	return cells, true
}

// SeriesByID returns the cells of the column whose "Series ID" attribute matches id.
func (t *MergedTable) SeriesByID(id string) (Column, []Cell, bool) {
	for i, c := range t.Columns {
		if c.Attribute("Series ID") != id {
			continue
		}
		cells := make([]Cell, len(t.Rows))
		for j, r := range t.Rows {
			if i < len(r.Values) {
				cells[j] = r.Values[i]
			}
		}
		return c, cells, true
	}
	return Column{}, nil, false
}
