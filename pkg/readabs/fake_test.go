package readabs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/readabs/readabs-go/pkg/readabs/transport"
	"github.com/xuri/excelize/v2"
)

// fakeTransport serves canned bodies by URL and records every request.
type fakeTransport struct {
	mu     sync.Mutex
	text   map[string]string
	bytes  map[string][]byte
	delays map[string]time.Duration
	errs   map[string]error

	calls     []string
	manyCalls [][]string
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		text:   make(map[string]string),
		bytes:  make(map[string][]byte),
		delays: make(map[string]time.Duration),
		errs:   make(map[string]error),
	}
}

func (f *fakeTransport) lookup(ctx context.Context, url string) (string, []byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	delay := f.delays[url]
	err := f.errs[url]
	text, okText := f.text[url]
	data, okBytes := f.bytes[url]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", nil, ctx.Err()
		}
	}
	if err != nil {
		return "", nil, &transport.Error{URL: url, Err: err}
	}
	if !okText && !okBytes {
		return "", nil, &transport.Error{URL: url, StatusCode: 404}
	}
	return text, data, nil
}

func (f *fakeTransport) FetchText(ctx context.Context, url string) (string, error) {
	text, _, err := f.lookup(ctx, url)
	return text, err
}

func (f *fakeTransport) FetchTextMany(ctx context.Context, urls []string) ([]string, error) {
	f.mu.Lock()
	f.manyCalls = append(f.manyCalls, append([]string(nil), urls...))
	f.mu.Unlock()
	return transport.Gather(ctx, urls, 0, f.FetchText)
}

func (f *fakeTransport) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	_, data, err := f.lookup(ctx, url)
	return data, err
}

func (f *fakeTransport) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeTransport) countCalls(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == url {
			n++
		}
	}
	return n
}

var errConnRefused = errors.New("connection refused")

const testBaseURL = "https://example.test/servlet/TSSearchServlet?"

func testOptions(ft *fakeTransport) Options {
	return Options{
		BaseURL:   testBaseURL,
		Transport: ft,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func mustCatalogueNumber(t *testing.T, v string) Identifier {
	t.Helper()
	id, err := CatalogueNumber(v)
	if err != nil {
		t.Fatalf("CatalogueNumber(%q) failed: %v", v, err)
	}
	return id
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fixtureSheet struct {
	name string
	rows [][]interface{}
}

// buildWorkbook writes sheets to an in-memory xlsx. nil values leave the cell empty.
func buildWorkbook(t *testing.T, sheets ...fixtureSheet) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				t.Fatalf("Failed to rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			t.Fatalf("Failed to add sheet %q: %v", s.name, err)
		}

		for r, row := range s.rows {
			for c, v := range row {
				if v == nil {
					continue
				}
				cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
				if err := f.SetCellValue(s.name, cell, v); err != nil {
					t.Fatalf("Failed to set %s!%s: %v", s.name, cell, err)
				}
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("Failed to write workbook: %v", err)
	}
	return buf.Bytes()
}
