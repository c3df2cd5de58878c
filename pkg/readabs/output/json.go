// Package output serializes catalogue records and merged tables.
package output

import (
	"encoding/json"

	"github.com/readabs/readabs-go/pkg/readabs/models"
)

// tableView is the JSON form of a MergedTable: plain cell values, dates as YYYY-MM-DD.
type tableView struct {
	Title   string          `json:"title"`
	URL     string          `json:"url,omitempty"`
	Columns []models.Column `json:"columns"`
	Rows    []rowView       `json:"rows"`
}

type rowView struct {
	Date   string        `json:"date"`
	Values []interface{} `json:"values"`
}

// ToJSON serializes a merged table.
func ToJSON(t *models.MergedTable, pretty bool) ([]byte, error) {
	view := tableView{
		Title:   t.Title,
		URL:     t.URL,
		Columns: t.Columns,
		Rows:    make([]rowView, len(t.Rows)),
	}
	for i, r := range t.Rows {
		values := make([]interface{}, len(r.Values))
		for j, c := range r.Values {
			values[j] = c.Value()
		}
		view.Rows[i] = rowView{Date: models.DateCell(r.Date).String(), Values: values}
	}
	return marshal(view, pretty)
}

// RecordsToJSON serializes directory entries as a list of field objects.
func RecordsToJSON(records []models.CatalogueRecord, pretty bool) ([]byte, error) {
	out := make([]map[string]string, len(records))
	for i, r := range records {
		out[i] = r.Map()
	}
	return marshal(out, pretty)
}

func marshal(v interface{}, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
