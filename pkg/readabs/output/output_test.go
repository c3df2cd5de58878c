package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/readabs/readabs-go/pkg/readabs/models"
)

func sampleTable() *models.MergedTable {
	return &models.MergedTable{
		Title: "TABLE 3. CPI",
		URL:   "https://files.test/640103.xlsx",
		Columns: []models.Column{
			{Name: "Food", Sheet: "Data1", Attributes: map[string]string{"Series ID": "A2325851W"}},
			{Name: "Note, quoted", Sheet: "Data1"},
		},
		Rows: []models.Row{
			{Date: time.Date(2020, time.June, 1, 0, 0, 0, 0, time.UTC), Values: []models.Cell{models.NumberCell(118.1), models.StringCell("p")}},
			{Date: time.Date(2020, time.September, 1, 0, 0, 0, 0, time.UTC), Values: []models.Cell{models.NumberCell(117.4), {}}},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleTable()); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	expected := "Date,Food,\"Note, quoted\"\n2020-06-01,118.1,p\n2020-09-01,117.4,\n"
	if buf.String() != expected {
		t.Errorf("Unexpected CSV:\n%s\nexpected:\n%s", buf.String(), expected)
	}
}

func TestToJSON(t *testing.T) {
	data, err := ToJSON(sampleTable(), false)
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	var decoded struct {
		Title   string `json:"title"`
		Columns []struct {
			Name       string            `json:"name"`
			Attributes map[string]string `json:"attributes"`
		} `json:"columns"`
		Rows []struct {
			Date   string        `json:"date"`
			Values []interface{} `json:"values"`
		} `json:"rows"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}

	if decoded.Title != "TABLE 3. CPI" || len(decoded.Columns) != 2 || len(decoded.Rows) != 2 {
		t.Fatalf("Unexpected table %+v", decoded)
	}
	if decoded.Columns[0].Attributes["Series ID"] != "A2325851W" {
		t.Errorf("Expected column attributes to be kept, got %v", decoded.Columns[0].Attributes)
	}
	if decoded.Rows[1].Date != "2020-09-01" {
		t.Errorf("Expected date 2020-09-01, got %q", decoded.Rows[1].Date)
	}
	if decoded.Rows[0].Values[0] != 118.1 || decoded.Rows[1].Values[1] != nil {
		t.Errorf("Unexpected values %v %v", decoded.Rows[0].Values, decoded.Rows[1].Values)
	}
}

func TestRecordsToJSONPretty(t *testing.T) {
	records := []models.CatalogueRecord{{Fields: []models.Field{
		{Name: models.FieldTableTitle, Value: "TABLE 3"},
		{Name: models.FieldSeriesID, Value: "A2325851W"},
	}}}

	data, err := RecordsToJSON(records, true)
	if err != nil {
		t.Fatalf("RecordsToJSON failed: %v", err)
	}
	if !strings.Contains(string(data), "\n  {") {
		t.Errorf("Expected indented output, got %s", data)
	}

	var decoded []map[string]string
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(decoded) != 1 || decoded[0]["SeriesID"] != "A2325851W" {
		t.Errorf("Unexpected records %v", decoded)
	}
}
