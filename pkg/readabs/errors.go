package readabs

import (
	"errors"
	"fmt"

	"github.com/readabs/readabs-go/pkg/readabs/parser"
)

// ErrInvalidCatalogueNumber indicates a catalogue number that does not end in ".0".
var ErrInvalidCatalogueNumber = errors.New("invalid catalogue number")

// ErrMissingIdentifier indicates that neither a catalogue number nor a series id was given.
var ErrMissingIdentifier = errors.New("either a catalogue number or a series id must be provided")

// ErrMalformedDirectoryEntry indicates a directory entry with an empty or missing field.
var ErrMalformedDirectoryEntry = parser.ErrMalformedDirectoryEntry

// ErrInvalidQuery indicates the directory answered with an error document.
var ErrInvalidQuery = errors.New("directory rejected query")

// ErrEmptyCatalogue indicates the directory returned no entries for the query.
var ErrEmptyCatalogue = errors.New("empty catalogue")

// ErrNoDataSheets indicates a workbook without data sheets.
var ErrNoDataSheets = parser.ErrNoDataSheets

// ErrMissingDateColumn indicates a data sheet without an implicit index column.
var ErrMissingDateColumn = parser.ErrMissingDateColumn

// ErrNoMatchingTable indicates that no table title matched.
var ErrNoMatchingTable = errors.New("no matching table")

// Stage names the pipeline step an error came from.
type Stage string

const (
	// StageIdentifier is identifier construction and validation.
	StageIdentifier Stage = "identifier"
	// StageDirectory is fetching and parsing directory pages.
	StageDirectory Stage = "directory"
	// StageIndex is building the title index and selecting tables.
	StageIndex Stage = "index"
	// StageSpreadsheet is downloading, decoding and merging a workbook.
	StageSpreadsheet Stage = "spreadsheet"
)

// StageError represents a failure in one pipeline stage.
type StageError struct {
	Stage  Stage
	Detail string // page, table title or other context; may be empty
	Err    error
}

func (e *StageError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Stage, e.Detail, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError creates a new StageError.
func NewStageError(stage Stage, detail string, err error) *StageError {
	return &StageError{
		Stage:  stage,
		Detail: detail,
		Err:    err,
	}
}
