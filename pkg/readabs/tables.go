package readabs

import (
	"context"
	"fmt"

	"github.com/readabs/readabs-go/pkg/readabs/models"
	"github.com/readabs/readabs-go/pkg/readabs/parser"
	"github.com/readabs/readabs-go/pkg/readabs/transport"
)

// tableLink is one title selected for materialization.
type tableLink struct {
	title string
	url   string
}

// Tables downloads every table whose title contains substr and returns each workbook's
// data sheets merged on Date, keyed by title. Workbooks are fetched concurrently; one
// failing table fails the call. No match yields an empty map.
func (q *Query) Tables(ctx context.Context, substr string) (map[string]*models.MergedTable, error) {
	links, err := q.selectTables(ctx, substr)
	if err != nil {
		return nil, err
	}
	tables, err := q.materialize(ctx, links)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*models.MergedTable, len(tables))
	for _, t := range tables {
		out[t.Title] = t
	}
	return out, nil
}

// FirstTable returns the matching table whose title appears first in the directory.
func (q *Query) FirstTable(ctx context.Context, substr string) (*models.MergedTable, error) {
	links, err := q.selectTables(ctx, substr)
	if err != nil {
		return nil, err
	}
	tables, err := q.materialize(ctx, links)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, NewStageError(StageIndex, "", fmt.Errorf("%w: %q", ErrNoMatchingTable, substr))
	}
	return tables[0], nil
}

// selectTables resolves substr against the memoized index, in directory order.
func (q *Query) selectTables(ctx context.Context, substr string) ([]tableLink, error) {
	index, err := q.catalogue(ctx)
	if err != nil {
		return nil, err
	}
	titles := index.matching(substr)
	links := make([]tableLink, len(titles))
	for i, t := range titles {
		links[i] = tableLink{title: t, url: index.links[t]}
	}
	return links, nil
}

// materialize fetches and merges the given tables concurrently. Results keep the
// order of links.
func (q *Query) materialize(ctx context.Context, links []tableLink) ([]*models.MergedTable, error) {
	if len(links) == 0 {
		return nil, nil
	}

	q.logger.Debug("fetching tables", "count", len(links))

	return transport.Gather(ctx, links, q.opts.MaxConcurrency, func(ctx context.Context, l tableLink) (*models.MergedTable, error) {
		data, err := q.opts.Transport.FetchBytes(ctx, l.url)
		if err != nil {
			return nil, NewStageError(StageSpreadsheet, l.title, err)
		}
		table, err := q.buildTable(data)
		if err != nil {
			return nil, NewStageError(StageSpreadsheet, l.title, err)
		}
		table.Title = l.title
		table.URL = l.url
		return table, nil
	})
}

// buildTable decodes a workbook, keeps its data sheets, normalizes each and joins them
// on Date.
func (q *Query) buildTable(data []byte) (*models.MergedTable, error) {
	wb, err := q.opts.Decoder.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode workbook: %w", err)
	}

	raw, err := parser.DataSheets(wb)
	if err != nil {
		return nil, err
	}

	sheets := make([]*models.NormalizedSheet, 0, len(raw))
	for _, s := range raw {
		ns, err := parser.NormalizeSheet(s)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, ns)
	}

	table := parser.MergeSheets(sheets)
	q.logger.Debug("table merged", "sheets", len(sheets), "rows", table.Len(), "columns", len(table.Columns))
	return table, nil
}
