package readabs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/readabs/readabs-go/pkg/readabs/transport"
)

// directoryPage renders a directory page with one entry per title.
func directoryPage(numPages int, titles ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?><TimeSeriesIndex>`)
	if numPages > 0 {
		fmt.Fprintf(&b, "<NumPages>%d</NumPages>", numPages)
	}
	for _, t := range titles {
		fmt.Fprintf(&b, "<Series><TableTitle>%s</TableTitle><TableURL>https://files.test/%s.xlsx</TableURL></Series>",
			t, strings.ReplaceAll(t, " ", "_"))
	}
	b.WriteString("</TimeSeriesIndex>")
	return b.String()
}

func TestFetchCatalogueSinglePage(t *testing.T) {
	fixture, err := os.ReadFile(filepath.Join("testdata", "timeseries_directory.xml"))
	if err != nil {
		t.Fatalf("Failed to read fixture: %v", err)
	}

	id := mustCatalogueNumber(t, "6401.0")
	ft := newFakeTransport()
	ft.text[BuildQueryURL(testBaseURL, id, "", 0)] = string(fixture)

	records, err := FetchCatalogue(context.Background(), id, testOptions(ft))
	if err != nil {
		t.Fatalf("FetchCatalogue failed: %v", err)
	}

	if ft.callCount() != 1 {
		t.Errorf("Expected 1 fetch, got %d", ft.callCount())
	}
	if len(ft.manyCalls) != 0 {
		t.Errorf("Expected no batch fetch, got %v", ft.manyCalls)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
	wantSeries := []string{"A2325846C", "A2325850V", "A2325851W"}
	for i, want := range wantSeries {
		if got, _ := records[i].Get("SeriesID"); got != want {
			t.Errorf("Record %d: expected SeriesID %q, got %q", i, want, got)
		}
	}
}

func TestFetchCatalogueNoPageCount(t *testing.T) {
	id := mustCatalogueNumber(t, "6401.0")
	ft := newFakeTransport()
	ft.text[BuildQueryURL(testBaseURL, id, "", 0)] = directoryPage(0, "A", "B")

	records, err := FetchCatalogue(context.Background(), id, testOptions(ft))
	if err != nil {
		t.Fatalf("FetchCatalogue failed: %v", err)
	}
	if len(records) != 2 || ft.callCount() != 1 {
		t.Errorf("Expected 2 records from 1 fetch, got %d records from %d fetches", len(records), ft.callCount())
	}
}

func TestFetchCataloguePaginated(t *testing.T) {
	id := mustCatalogueNumber(t, "6401.0")
	opts := testOptions(newFakeTransport())
	opts.TableTitle = "CPI"
	ft := opts.Transport.(*fakeTransport)

	page2 := BuildQueryURL(testBaseURL, id, "CPI", 2)
	page3 := BuildQueryURL(testBaseURL, id, "CPI", 3)
	ft.text[BuildQueryURL(testBaseURL, id, "CPI", 0)] = directoryPage(3, "p1a", "p1b")
	ft.text[page2] = directoryPage(3, "p2a", "p2b")
	ft.text[page3] = directoryPage(3, "p3a")
	// page 2 completes after page 3
	ft.delays[page2] = 50 * time.Millisecond

	records, err := FetchCatalogue(context.Background(), id, opts)
	if err != nil {
		t.Fatalf("FetchCatalogue failed: %v", err)
	}

	if ft.callCount() != 3 {
		t.Errorf("Expected 3 fetches, got %d", ft.callCount())
	}
	if len(ft.manyCalls) != 1 || len(ft.manyCalls[0]) != 2 {
		t.Fatalf("Expected one batch of 2 pages, got %v", ft.manyCalls)
	}
	if ft.manyCalls[0][0] != page2 || ft.manyCalls[0][1] != page3 {
		t.Errorf("Expected batch [%s %s], got %v", page2, page3, ft.manyCalls[0])
	}

	var titles []string
	for _, r := range records {
		titles = append(titles, r.TableTitle())
	}
	expected := []string{"p1a", "p1b", "p2a", "p2b", "p3a"}
	if strings.Join(titles, ",") != strings.Join(expected, ",") {
		t.Errorf("Expected records %v, got %v", expected, titles)
	}
}

func TestFetchCatalogueMalformedEntry(t *testing.T) {
	id := mustCatalogueNumber(t, "6401.0")
	ft := newFakeTransport()
	ft.text[BuildQueryURL(testBaseURL, id, "", 0)] = directoryPage(2, "ok")
	ft.text[BuildQueryURL(testBaseURL, id, "", 2)] =
		`<TimeSeriesIndex><Series><TableTitle>x</TableTitle><TableURL></TableURL></Series></TimeSeriesIndex>`

	records, err := FetchCatalogue(context.Background(), id, testOptions(ft))
	if !errors.Is(err, ErrMalformedDirectoryEntry) {
		t.Fatalf("Expected ErrMalformedDirectoryEntry, got %v", err)
	}
	if records != nil {
		t.Errorf("Expected no records, got %d", len(records))
	}

	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StageDirectory || stageErr.Detail != "page 2" {
		t.Errorf("Expected directory stage error for page 2, got %v", err)
	}
}

func TestFetchCatalogueTransportError(t *testing.T) {
	id := mustCatalogueNumber(t, "6401.0")

	t.Run("first page", func(t *testing.T) {
		ft := newFakeTransport()
		ft.errs[BuildQueryURL(testBaseURL, id, "", 0)] = errConnRefused

		_, err := FetchCatalogue(context.Background(), id, testOptions(ft))
		var transportErr *transport.Error
		if !errors.As(err, &transportErr) {
			t.Fatalf("Expected *transport.Error, got %v", err)
		}
		if !errors.Is(err, errConnRefused) {
			t.Errorf("Expected cause to be preserved, got %v", err)
		}
	})

	t.Run("batch member", func(t *testing.T) {
		ft := newFakeTransport()
		ft.text[BuildQueryURL(testBaseURL, id, "", 0)] = directoryPage(3, "p1")
		ft.text[BuildQueryURL(testBaseURL, id, "", 2)] = directoryPage(3, "p2")
		ft.errs[BuildQueryURL(testBaseURL, id, "", 3)] = errConnRefused

		records, err := FetchCatalogue(context.Background(), id, testOptions(ft))
		if !errors.Is(err, errConnRefused) {
			t.Fatalf("Expected batch failure, got %v", err)
		}
		if records != nil {
			t.Errorf("Expected no partial records, got %d", len(records))
		}
	})
}

func TestFetchCatalogueErrorDocument(t *testing.T) {
	id := mustCatalogueNumber(t, "9999.0")
	errorDoc := "<?xml version=\"1.0\" encoding=\"utf-8\" ?><Error>Invalid query.</Error>\r\n"

	ft := newFakeTransport()
	ft.text[BuildQueryURL(testBaseURL, id, "", 0)] = errorDoc

	_, err := FetchCatalogue(context.Background(), id, testOptions(ft))
	if !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("Expected ErrInvalidQuery, got %v", err)
	}
	if !strings.Contains(err.Error(), "Invalid query.") {
		t.Errorf("Expected upstream message in error, got %q", err.Error())
	}

	opts := testOptions(ft)
	opts.AllowErrorDocuments = true
	records, err := FetchCatalogue(context.Background(), id, opts)
	if err != nil {
		t.Fatalf("Expected error document to pass through, got %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records, got %d", len(records))
	}
}

func TestFetchCatalogueZeroIdentifier(t *testing.T) {
	_, err := FetchCatalogue(context.Background(), Identifier{}, testOptions(newFakeTransport()))
	if !errors.Is(err, ErrMissingIdentifier) {
		t.Errorf("Expected ErrMissingIdentifier, got %v", err)
	}
}
