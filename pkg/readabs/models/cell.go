// Package models defines data structures for catalogue entries and spreadsheet tables.
package models

import (
	"strconv"
	"time"
)

// CellKind identifies the decoded type of a cell value.
type CellKind int

const (
	// CellEmpty is a missing or blank cell.
	CellEmpty CellKind = iota
	// CellString is a text cell.
	CellString
	// CellNumber is a numeric cell without a date format.
	CellNumber
	// CellDate is a numeric cell carrying a date/time number format.
	CellDate
	// CellBool is a boolean cell.
	CellBool
)

// Cell is a single decoded spreadsheet value.
type Cell struct {
	// Kind is the decoded type.
	Kind CellKind `json:"kind"`
	// Text is the raw text for string cells, or the raw value as stored otherwise.
	Text string `json:"text,omitempty"`
	// Number is set for number and date cells.
	Number float64 `json:"number,omitempty"`
	// Time is set for date cells.
	Time time.Time `json:"time,omitempty"`
	// Bool is set for boolean cells.
	Bool bool `json:"bool,omitempty"`
}

// StringCell returns a text cell.
func StringCell(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: CellString, Text: s}
}

// NumberCell returns a numeric cell.
func NumberCell(f float64) Cell {
	return Cell{Kind: CellNumber, Number: f, Text: strconv.FormatFloat(f, 'f', -1, 64)}
}

// DateCell returns a date cell.
func DateCell(t time.Time) Cell {
	return Cell{Kind: CellDate, Time: t, Text: t.Format(time.RFC3339)}
}

// IsEmpty reports whether the cell holds no value.
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty
}

// IsDate reports whether the cell holds a date/time value.
func (c Cell) IsDate() bool {
	return c.Kind == CellDate
}

// Value returns the cell as a plain Go value: nil, string, float64, time.Time or bool.
func (c Cell) Value() interface{} {
	switch c.Kind {
	case CellString:
		return c.Text
	case CellNumber:
		return c.Number
	case CellDate:
		return c.Time
	case CellBool:
		return c.Bool
	default:
		return nil
	}
}

// String formats the cell for display and CSV output.
func (c Cell) String() string {
	switch c.Kind {
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellDate:
		if c.Time.Hour() == 0 && c.Time.Minute() == 0 && c.Time.Second() == 0 {
			return c.Time.Format("2006-01-02")
		}
		return c.Time.Format("2006-01-02 15:04:05")
	case CellBool:
		return strconv.FormatBool(c.Bool)
	default:
		return c.Text
	}
}
