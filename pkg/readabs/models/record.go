package models

// Field is one child element of a directory entry.
type Field struct {
	// Name is the element name, e.g. "TableTitle".
	Name string `json:"name"`
	// Value is the element text.
	Value string `json:"value"`
}

// Well-known directory entry fields.
const (
	FieldTableTitle = "TableTitle"
	FieldTableURL   = "TableURL"
	FieldSeriesID   = "SeriesID"
)

// CatalogueRecord is one entry returned by the directory endpoint. The field set is
// not fixed, so fields are kept in document order.
type CatalogueRecord struct {
	Fields []Field `json:"fields"`
}

// Get returns the value of the first field with the given name.
func (r CatalogueRecord) Get(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// TableTitle returns the TableTitle field, or "".
func (r CatalogueRecord) TableTitle() string {
	v, _ := r.Get(FieldTableTitle)
	return v
}

// TableURL returns the TableURL field, or "".
func (r CatalogueRecord) TableURL() string {
	v, _ := r.Get(FieldTableURL)
	return v
}

// Map returns the fields as a map. Later duplicates overwrite earlier ones.
func (r CatalogueRecord) Map() map[string]string {
	m := make(map[string]string, len(r.Fields))
	for _, f := range r.Fields {
		m[f.Name] = f.Value
	}
	return m
}
