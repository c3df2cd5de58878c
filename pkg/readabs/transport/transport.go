// Package transport fetches directory pages and workbook payloads over HTTP.
package transport

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Transport issues single GET requests and concurrent batches of them.
type Transport interface {
	// FetchText returns the body of url as text.
	FetchText(ctx context.Context, url string) (string, error)
	// FetchTextMany fetches all urls concurrently. Results are in input order.
	// If any request fails the whole batch fails.
	FetchTextMany(ctx context.Context, urls []string) ([]string, error)
	// FetchBytes returns the body of url.
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// Error is a failed request.
type Error struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Gather runs fetch for every item concurrently, with at most limit in flight
// (limit <= 0 means unbounded), and returns the results in input order.
// The first failure cancels the remaining requests and fails the batch.
func Gather[In, Out any](ctx context.Context, items []In, limit int, fetch func(ctx context.Context, item In) (Out, error)) ([]Out, error) {
	results := make([]Out, len(items))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, item := range items {
		g.Go(func() error {
			v, err := fetch(gctx, item)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
