package readabs

import (
	"context"
	"fmt"

	"github.com/readabs/readabs-go/pkg/readabs/models"
	"github.com/readabs/readabs-go/pkg/readabs/parser"
)

// FetchCatalogue fetches every directory page for id and returns the entries of page 1,
// then page 2, and so on. Pages after the first are fetched concurrently in one batch;
// any failure fails the whole call.
func FetchCatalogue(ctx context.Context, id Identifier, opts Options) ([]models.CatalogueRecord, error) {
	if id.IsZero() {
		return nil, NewStageError(StageIdentifier, "", ErrMissingIdentifier)
	}
	opts = opts.withDefaults()
	logger := opts.Logger.With("identifier", id.Value())

	first, err := opts.Transport.FetchText(ctx, BuildQueryURL(opts.BaseURL, id, opts.TableTitle, 0))
	if err != nil {
		return nil, NewStageError(StageDirectory, "page 1", err)
	}
	dir, err := parsePage(first, 1, opts)
	if err != nil {
		return nil, err
	}

	records := dir.Records
	if dir.NumPages <= 1 {
		logger.Debug("directory fetched", "pages", 1, "records", len(records))
		return records, nil
	}

	urls := make([]string, 0, dir.NumPages-1)
	for page := 2; page <= dir.NumPages; page++ {
		urls = append(urls, BuildQueryURL(opts.BaseURL, id, opts.TableTitle, page))
	}
	logger.Debug("fetching remaining directory pages", "pages", dir.NumPages)

	bodies, err := opts.Transport.FetchTextMany(ctx, urls)
	if err != nil {
		return nil, NewStageError(StageDirectory, fmt.Sprintf("pages 2-%d", dir.NumPages), err)
	}
	if len(bodies) != len(urls) {
		return nil, NewStageError(StageDirectory, "",
			fmt.Errorf("transport returned %d pages, want %d", len(bodies), len(urls)))
	}

	for i, body := range bodies {
		page, err := parsePage(body, i+2, opts)
		if err != nil {
			return nil, err
		}
		records = append(records, page.Records...)
	}

	logger.Debug("directory fetched", "pages", dir.NumPages, "records", len(records))
	return records, nil
}

// parsePage parses one directory page and applies the error-document policy.
func parsePage(body string, page int, opts Options) (*parser.Directory, error) {
	detail := fmt.Sprintf("page %d", page)

	dir, err := parser.ParseDirectory([]byte(body))
	if err != nil {
		return nil, NewStageError(StageDirectory, detail, err)
	}

	if dir.Error != "" {
		if !opts.AllowErrorDocuments {
			return nil, NewStageError(StageDirectory, detail, fmt.Errorf("%w: %s", ErrInvalidQuery, dir.Error))
		}
		opts.Logger.Debug("directory returned error document", "page", page, "message", dir.Error)
	}
	return dir, nil
}
