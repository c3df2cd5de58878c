package readabs

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultBaseURL is the time-series directory search endpoint.
const DefaultBaseURL = "https://ausstats.abs.gov.au/servlet/TSSearchServlet?"

// Query parameter names understood by the directory endpoint.
const (
	paramTableTitle = "ttitle"
	paramPage       = "pg"
	paramCatalogue  = "catno"
	paramSeries     = "sid"
)

// BuildQuery returns the directory URL for id on DefaultBaseURL.
func BuildQuery(id Identifier, tableTitle string, page int) string {
	return BuildQueryURL(DefaultBaseURL, id, tableTitle, page)
}

// BuildQueryURL returns the directory URL for id on base. Parameters are written in a
// fixed order (table title, page, identifier) and omitted when empty or zero.
func BuildQueryURL(base string, id Identifier, tableTitle string, page int) string {
	var params []string
	if tableTitle != "" {
		params = append(params, paramTableTitle+"="+url.QueryEscape(tableTitle))
	}
	if page > 0 {
		params = append(params, paramPage+"="+strconv.Itoa(page))
	}
	switch id.Kind() {
	case KindCatalogueNumber:
		params = append(params, paramCatalogue+"="+url.QueryEscape(id.Value()))
	case KindSeriesID:
		params = append(params, paramSeries+"="+url.QueryEscape(id.Value()))
	}

	var b strings.Builder
	b.WriteString(base)
	if len(params) > 0 {
		switch {
		case !strings.Contains(base, "?"):
			b.WriteByte('?')
		case !strings.HasSuffix(base, "?") && !strings.HasSuffix(base, "&"):
			b.WriteByte('&')
		}
		b.WriteString(strings.Join(params, "&"))
	}
	return b.String()
}
