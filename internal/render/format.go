package render

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Placeholder texts shown in place of missing data.
const (
	NotAvailable     = "Not available"
	NoDocuments      = "No documents available"
	NoTimeline       = "No timeline data available"
	DateNotAvailable = "Date not available"
)

// DownloadPath is the document download endpoint.
const DownloadPath = "/download_pdf"

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"January 2, 2006",
	"Jan 2, 2006",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders a date in long form, e.g. "March 15, 2023". Empty input
// gives NotAvailable and unparseable input is returned as given.
func FormatDate(s string) string {
	if s == "" {
		return NotAvailable
	}
	t, ok := parseDate(s)
	if !ok {
		return s
	}
	return t.Format("January 2, 2006")
}

// FormatShortDate renders a date as "3/15/2023".
func FormatShortDate(s string) string {
	if s == "" {
		return NotAvailable
	}
	t, ok := parseDate(s)
	if !ok {
		return s
	}
	return t.Format("1/2/2006")
}

// FormatDuration renders seconds with two decimals.
func FormatDuration(seconds float64) string {
	return fmt.Sprintf("%.2f", seconds)
}

// DownloadURL routes a document through the download endpoint.
func DownloadURL(docURL string) string {
	return DownloadPath + "?url=" + url.QueryEscape(docURL)
}
