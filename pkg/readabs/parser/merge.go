package parser

import (
	"time"

	"github.com/readabs/readabs-go/pkg/readabs/models"
)

// MergeSheets joins normalized sheets on Date (inner join). Row order follows the first
// sheet. If a later sheet repeats a date, its first row for that date is used.
// A column name already present in the result is suffixed with " (<sheet name>)".
func MergeSheets(sheets []*models.NormalizedSheet) *models.MergedTable {
	table := &models.MergedTable{}
	if len(sheets) == 0 {
		return table
	}

	names := make(map[string]bool)
	addColumns := func(s *models.NormalizedSheet) {
		for _, c := range s.Columns {
			if names[c.Name] || c.Name == models.DateColumn {
				c.Name = c.Name + " (" + s.Name + ")"
			}
			names[c.Name] = true
			table.Columns = append(table.Columns, c)
		}
	}

	first := sheets[0]
	addColumns(first)
	table.Rows = make([]models.Row, len(first.Rows))
	for i, r := range first.Rows {
		table.Rows[i] = models.Row{Date: r.Date, Values: append([]models.Cell(nil), r.Values...)}
	}

	for _, s := range sheets[1:] {
		byDate := make(map[time.Time]int, len(s.Rows))
		for i, r := range s.Rows {
			key := dateKey(r.Date)
			if _, ok := byDate[key]; !ok {
				byDate[key] = i
			}
		}

		kept := table.Rows[:0]
		for _, r := range table.Rows {
			idx, ok := byDate[dateKey(r.Date)]
			if !ok {
				continue
			}
			r.Values = append(r.Values, padCells(s.Rows[idx].Values, len(s.Columns))...)
			kept = append(kept, r)
		}
		table.Rows = kept
		addColumns(s)
	}

	return table
}

// dateKey strips location and monotonic data so equal instants compare equal as map keys.
func dateKey(t time.Time) time.Time {
	return t.UTC().Round(0)
}
