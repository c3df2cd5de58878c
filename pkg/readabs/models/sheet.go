package models

import "time"

// DateColumn is the canonical name given to a sheet's implicit index column.
const DateColumn = "Date"

// RawSheet is a named grid of cells as decoded from one workbook.
type RawSheet struct {
	// Name is the worksheet name.
	Name string `json:"name"`
	// Rows holds the decoded cells, row-major. Rows may have different lengths.
	Rows [][]Cell `json:"rows"`
}

// Width returns the length of the longest row.
func (s RawSheet) Width() int {
	w := 0
	for _, row := range s.Rows {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// Column describes one non-key column of a normalized or merged table.
type Column struct {
	// Name is the header text of the column.
	Name string `json:"name"`
	// Sheet is the worksheet the column came from.
	Sheet string `json:"sheet"`
	// Attributes holds labelled header rows (e.g. "Unit", "Series ID") for this column.
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Attribute returns a header attribute such as "Series ID".
func (c Column) Attribute(label string) string {
	return c.Attributes[label]
}

// Row is one dated observation row.
type Row struct {
	// Date is the value of the Date column.
	Date time.Time `json:"date"`
	// Values are aligned with the owning table's Columns.
	Values []Cell `json:"values"`
}

// NormalizedSheet is a RawSheet with its index column renamed to Date and every
// undated row removed.
type NormalizedSheet struct {
	// Name is the worksheet name.
	Name string `json:"name"`
	// Columns lists the non-key columns in sheet order.
	Columns []Column `json:"columns"`
	// Rows holds the dated rows in sheet order.
	Rows []Row `json:"rows"`
}
