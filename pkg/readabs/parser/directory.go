package parser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/readabs/readabs-go/pkg/readabs/models"
	"golang.org/x/text/encoding/charmap"
)

// Element names used by the time-series directory.
const (
	elemNumPages = "NumPages"
	elemSeries   = "Series"
	elemError    = "Error"
)

// ErrMalformedDirectoryEntry indicates a directory entry with an empty field.
var ErrMalformedDirectoryEntry = errors.New("malformed directory entry")

// EmptyFieldError reports the entry and field that carried no text.
type EmptyFieldError struct {
	Entry int // 0-based position of the entry within the page
	Field string
}

func (e *EmptyFieldError) Error() string {
	return fmt.Sprintf("directory entry %d: field %q has no text", e.Entry, e.Field)
}

func (e *EmptyFieldError) Unwrap() error {
	return ErrMalformedDirectoryEntry
}

// Directory is one parsed page of the time-series directory.
type Directory struct {
	// NumPages is the total page count, or 0 if the page did not carry one.
	NumPages int
	// Records holds the entries in document order.
	Records []models.CatalogueRecord
	// Error is the message of an error document (root element "Error"), or "".
	Error string
}

// ParseDirectory parses a directory page. Entries are the repeating Series elements;
// every child element of an entry becomes a field and must carry text.
func ParseDirectory(data []byte) (*Directory, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = charsetReader

	dir := &Directory{}
	depth := 0
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse directory: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch {
			case depth == 1 && t.Name.Local == elemError:
				msg, err := readText(decoder)
				if err != nil {
					return nil, fmt.Errorf("parse directory: %w", err)
				}
				dir.Error = msg
				if dir.Error == "" {
					dir.Error = "error document"
				}
				depth--
			case t.Name.Local == elemNumPages:
				text, err := readText(decoder)
				if err != nil {
					return nil, fmt.Errorf("parse directory: %w", err)
				}
				n, err := strconv.Atoi(text)
				if err != nil {
					return nil, fmt.Errorf("parse directory: invalid %s %q", elemNumPages, text)
				}
				dir.NumPages = n
				depth--
			case t.Name.Local == elemSeries:
				record, err := parseSeries(decoder, len(dir.Records))
				if err != nil {
					return nil, err
				}
				dir.Records = append(dir.Records, record)
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}

	return dir, nil
}

// parseSeries reads the children of a Series element up to its end tag.
func parseSeries(decoder *xml.Decoder, index int) (models.CatalogueRecord, error) {
	var record models.CatalogueRecord
	for {
		token, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return record, fmt.Errorf("parse directory: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			text, err := readText(decoder)
			if err != nil {
				return record, fmt.Errorf("parse directory: %w", err)
			}
			if text == "" {
				return models.CatalogueRecord{}, &EmptyFieldError{Entry: index, Field: t.Name.Local}
			}
			record.Fields = append(record.Fields, models.Field{Name: t.Name.Local, Value: text})
		case xml.EndElement:
			return record, nil
		}
	}
}

// readText collects the character data of the current element, including nested
// elements, and consumes its end tag.
func readText(decoder *xml.Decoder) (string, error) {
	var b strings.Builder
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return "", err
		}
		switch t := token.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			b.Write(t)
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// charsetReader handles the single-byte encodings the directory service has been
// seen to declare besides UTF-8.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(label) {
	case "utf-8", "utf8", "us-ascii", "ascii":
		return input, nil
	case "iso-8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	default:
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
}
