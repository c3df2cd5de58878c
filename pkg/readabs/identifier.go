package readabs

import (
	"fmt"
	"regexp"
)

var catalogueNumberPattern = regexp.MustCompile(`\.0$`)

// IdentifierKind tells which variant an Identifier holds.
type IdentifierKind int

const (
	// KindCatalogueNumber identifies a themed group of tables, e.g. "6401.0".
	KindCatalogueNumber IdentifierKind = iota + 1
	// KindSeriesID identifies a single time series, e.g. "A2325846C".
	KindSeriesID
)

func (k IdentifierKind) String() string {
	switch k {
	case KindCatalogueNumber:
		return "catalogue number"
	case KindSeriesID:
		return "series id"
	default:
		return "none"
	}
}

// Identifier is either a catalogue number or a series id. The zero value is not valid;
// use NewIdentifier, CatalogueNumber or SeriesID.
type Identifier struct {
	kind  IdentifierKind
	value string
}

// NewIdentifier builds an Identifier. A non-empty catalogue number takes precedence
// over the series id.
func NewIdentifier(catalogueNo, seriesID string) (Identifier, error) {
	if catalogueNo != "" {
		return CatalogueNumber(catalogueNo)
	}
	return SeriesID(seriesID)
}

// CatalogueNumber builds a catalogue number identifier.
func CatalogueNumber(value string) (Identifier, error) {
	if value == "" {
		return Identifier{}, NewStageError(StageIdentifier, "", ErrMissingIdentifier)
	}
	if !catalogueNumberPattern.MatchString(value) {
		return Identifier{}, NewStageError(StageIdentifier, "",
			fmt.Errorf("%w: %q must end in \".0\"", ErrInvalidCatalogueNumber, value))
	}
	return Identifier{kind: KindCatalogueNumber, value: value}, nil
}

// SeriesID builds a series id identifier.
func SeriesID(value string) (Identifier, error) {
	if value == "" {
		return Identifier{}, NewStageError(StageIdentifier, "", ErrMissingIdentifier)
	}
	return Identifier{kind: KindSeriesID, value: value}, nil
}

// Kind returns the active variant.
func (id Identifier) Kind() IdentifierKind { return id.kind }

// Value returns the identifier text.
func (id Identifier) Value() string { return id.value }

// IsZero reports whether id was not built by a constructor.
func (id Identifier) IsZero() bool { return id.kind == 0 }

func (id Identifier) String() string {
	return fmt.Sprintf("%s %s", id.kind, id.value)
}
