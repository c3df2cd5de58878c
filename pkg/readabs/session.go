package readabs

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/readabs/readabs-go/pkg/readabs/models"
)

// Query is a lookup session for one identifier. The directory is fetched at most once
// per Query, on first use; the entries and the title index are then reused for the
// lifetime of the Query. A failed fetch is not cached.
type Query struct {
	id        Identifier
	opts      Options
	sessionID string
	logger    *slog.Logger

	mu    sync.Mutex
	index *catalogueIndex
}

// catalogueIndex is the memoized directory snapshot of a Query.
type catalogueIndex struct {
	records []models.CatalogueRecord
	links   map[string]string
	titles  []string // distinct titles, in order of first appearance
}

// NewQuery creates a session for id.
func NewQuery(id Identifier, opts Options) (*Query, error) {
	if id.IsZero() {
		return nil, NewStageError(StageIdentifier, "", ErrMissingIdentifier)
	}
	opts = opts.withDefaults()
	sessionID := uuid.New().String()

	return &Query{
		id:        id,
		opts:      opts,
		sessionID: sessionID,
		logger:    opts.Logger.With("session", sessionID, "identifier", id.Value()),
	}, nil
}

// Identifier returns the identifier the session was created for.
func (q *Query) Identifier() Identifier { return q.id }

// SessionID returns the session id attached to log entries.
func (q *Query) SessionID() string { return q.sessionID }

// URL returns the first directory page URL of the session.
func (q *Query) URL() string {
	return BuildQueryURL(q.opts.BaseURL, q.id, q.opts.TableTitle, 0)
}

// catalogue returns the memoized index, fetching the directory on first use.
func (q *Query) catalogue(ctx context.Context) (*catalogueIndex, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.index != nil {
		return q.index, nil
	}

	records, err := FetchCatalogue(ctx, q.id, q.opts)
	if err != nil {
		return nil, err
	}
	index, err := buildIndex(records)
	if err != nil {
		return nil, err
	}

	q.logger.Debug("catalogue indexed", "records", len(records), "tables", len(index.titles))
	q.index = index
	return index, nil
}

// buildIndex folds records into a title to URL map. A later record with the same title
// replaces the URL of an earlier one.
func buildIndex(records []models.CatalogueRecord) (*catalogueIndex, error) {
	if len(records) == 0 {
		return nil, NewStageError(StageIndex, "", ErrEmptyCatalogue)
	}

	index := &catalogueIndex{
		records: records,
		links:   make(map[string]string),
	}
	for i, r := range records {
		title, url := r.TableTitle(), r.TableURL()
		if title == "" || url == "" {
			return nil, NewStageError(StageIndex, fmt.Sprintf("entry %d", i),
				fmt.Errorf("%w: missing %s or %s", ErrMalformedDirectoryEntry, models.FieldTableTitle, models.FieldTableURL))
		}
		if _, ok := index.links[title]; !ok {
			index.titles = append(index.titles, title)
		}
		index.links[title] = url
	}
	return index, nil
}

// matching returns the titles containing substr, in order of first appearance.
func (c *catalogueIndex) matching(substr string) []string {
	var titles []string
	for _, t := range c.titles {
		if strings.Contains(t, substr) {
			titles = append(titles, t)
		}
	}
	return titles
}

// Records returns the directory entries of the session.
func (q *Query) Records(ctx context.Context) ([]models.CatalogueRecord, error) {
	index, err := q.catalogue(ctx)
	if err != nil {
		return nil, err
	}
	return append([]models.CatalogueRecord(nil), index.records...), nil
}

// SeriesRecords returns the entries whose SeriesID field equals seriesID.
func (q *Query) SeriesRecords(ctx context.Context, seriesID string) ([]models.CatalogueRecord, error) {
	index, err := q.catalogue(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.CatalogueRecord
	for _, r := range index.records {
		if v, ok := r.Get(models.FieldSeriesID); ok && v == seriesID {
			out = append(out, r)
		}
	}
	return out, nil
}

// TableNames returns the distinct table titles, sorted.
func (q *Query) TableNames(ctx context.Context) ([]string, error) {
	index, err := q.catalogue(ctx)
	if err != nil {
		return nil, err
	}
	names := append([]string(nil), index.titles...)
	sort.Strings(names)
	return names, nil
}

// TableLinks returns the title to URL entries whose title contains substr
// (case-sensitive). No match yields an empty map, not an error.
func (q *Query) TableLinks(ctx context.Context, substr string) (map[string]string, error) {
	index, err := q.catalogue(ctx)
	if err != nil {
		return nil, err
	}
	links := make(map[string]string)
	for _, t := range index.matching(substr) {
		links[t] = index.links[t]
	}
	return links, nil
}
