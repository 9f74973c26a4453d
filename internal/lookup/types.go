package lookup

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Query is a single case search. It is built once per submission and never
// modified afterwards.
type Query struct {
	CaseType   string `json:"case_type"`
	CaseNumber string `json:"case_number"`
	FilingYear int    `json:"filing_year"`
}

// Display returns the "<type> <number>/<year>" form used across the UI.
func (q Query) Display() string {
	return fmt.Sprintf("%s %s/%d", q.CaseType, q.CaseNumber, q.FilingYear)
}

// Document is a link to a case document, usually an order PDF.
type Document struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
	Date  string `json:"date,omitempty"`
}

// TimelineEvent is one dated entry in the case history.
type TimelineEvent struct {
	Date  string `json:"date"`
	Event string `json:"event"`
}

// Result is the normalized success payload of a lookup. Dates are kept as
// the strings the backend produced; the renderer formats them.
type Result struct {
	CaseNumber      string          `json:"case_number"`
	PartiesNames    string          `json:"parties_names"`
	FilingDate      string          `json:"filing_date"`
	NextHearingDate string          `json:"next_hearing_date"`
	CaseStatus      string          `json:"case_status"`
	SearchDuration  float64         `json:"search_duration"`
	PDFLinks        []Document      `json:"pdf_links"`
	Timeline        []TimelineEvent `json:"timeline"`
	FromCache       bool            `json:"from_cache,omitempty"`
}

// Client talks to a case lookup backend. Implementations return either a
// result or an *apperr.Error of kind NotFound (domain-negative) or
// Unavailable (transport).
type Client interface {
	Search(ctx context.Context, q Query) (*Result, error)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, q Query) (*Result, error)

func (f ClientFunc) Search(ctx context.Context, q Query) (*Result, error) {
	return f(ctx, q)
}

// ParseDisplay is the inverse of Display. It accepts "<type> <number>/<year>"
// where the type may itself contain spaces.
func ParseDisplay(s string) (Query, bool) {
	s = strings.TrimSpace(s)
	sp := strings.LastIndex(s, " ")
	if sp <= 0 {
		return Query{}, false
	}
	numYear := s[sp+1:]
	slash := strings.LastIndex(numYear, "/")
	if slash <= 0 || slash == len(numYear)-1 {
		return Query{}, false
	}
	year, err := strconv.Atoi(numYear[slash+1:])
	if err != nil {
		return Query{}, false
	}
	return Query{
		CaseType:   strings.TrimSpace(s[:sp]),
		CaseNumber: numYear[:slash],
		FilingYear: year,
	}, true
}
