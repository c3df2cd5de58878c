package output

import (
	"encoding/csv"
	"io"

	"github.com/readabs/readabs-go/pkg/readabs/models"
)

// WriteCSV writes a merged table as CSV with a header row, Date first.
func WriteCSV(w io.Writer, t *models.MergedTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.ColumnNames()); err != nil {
		return err
	}

	record := make([]string, len(t.Columns)+1)
	for _, r := range t.Rows {
		record[0] = models.DateCell(r.Date).String()
		for i := range t.Columns {
			record[i+1] = ""
			if i < len(r.Values) {
				record[i+1] = r.Values[i].String()
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
