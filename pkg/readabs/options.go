// Package readabs resolves catalogue numbers and series ids against the time-series
// directory and materializes the matching spreadsheet tables as date-indexed tables.
package readabs

import (
	"log/slog"

	"github.com/readabs/readabs-go/pkg/readabs/models"
	"github.com/readabs/readabs-go/pkg/readabs/parser"
	"github.com/readabs/readabs-go/pkg/readabs/transport"
)

// Decoder turns a spreadsheet payload into worksheets.
type Decoder interface {
	Decode(data []byte) (*models.Workbook, error)
}

// Options configures directory lookups and table materialization.
type Options struct {
	// BaseURL is the directory search endpoint. Defaults to DefaultBaseURL.
	BaseURL string
	// TableTitle is passed to the directory as a server-side title filter.
	TableTitle string
	// Transport performs requests. Defaults to an HTTP transport.
	Transport transport.Transport
	// Decoder decodes workbooks. Defaults to parser.ExcelDecoder.
	Decoder Decoder
	// Logger receives debug logs. Defaults to slog.Default().
	Logger *slog.Logger
	// MaxConcurrency limits concurrent workbook downloads (0 means unbounded).
	MaxConcurrency int
	// AllowErrorDocuments makes an error document from the directory count as a page
	// without entries instead of failing with ErrInvalidQuery.
	AllowErrorDocuments bool
}

// DefaultOptions returns default options.
func DefaultOptions() Options {
	return Options{
		BaseURL:        DefaultBaseURL,
		MaxConcurrency: transport.DefaultMaxConcurrency,
	}
}

// withDefaults fills unset fields.
func (o Options) withDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Transport == nil {
		o.Transport = transport.NewHTTP(transport.Config{
			MaxConcurrency: o.MaxConcurrency,
			Logger:         o.Logger,
		})
	}
	if o.Decoder == nil {
		o.Decoder = parser.ExcelDecoder{}
	}
	return o
}
