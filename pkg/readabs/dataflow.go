package readabs

import (
	"context"
	"regexp"

	"github.com/readabs/readabs-go/pkg/readabs/transport"
)

// DataflowURL lists the dataflows published by the statistics data API.
const DataflowURL = "https://data.api.abs.gov.au/rest/dataflow/ABS"

var dataflowIDPattern = regexp.MustCompile(`Dataflow id="(.+?)"`)

// ListDataflows returns the dataflow ids published at DataflowURL.
func ListDataflows(ctx context.Context, t transport.Transport) ([]string, error) {
	body, err := t.FetchText(ctx, DataflowURL)
	if err != nil {
		return nil, NewStageError(StageDirectory, "dataflows", err)
	}
	return ParseDataflows(body), nil
}

// ParseDataflows extracts dataflow ids from a dataflow structure document.
func ParseDataflows(body string) []string {
	var ids []string
	for _, m := range dataflowIDPattern.FindAllStringSubmatch(body, -1) {
		ids = append(ids, m[1])
	}
	return ids
}
