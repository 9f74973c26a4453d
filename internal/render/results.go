package render

import (
	"fmt"
	"strings"

	"github.com/JustJay7/case-lookup/internal/lookup"
)

// Field is a single display value. Muted fields show a placeholder and are
// styled muted and italic.
type Field struct {
	Text  string `json:"text"`
	Muted bool   `json:"muted"`
}

// TextField shows v, or NotAvailable when v is blank.
func TextField(v string) Field {
	if strings.TrimSpace(v) == "" {
		return Field{Text: NotAvailable, Muted: true}
	}
	return Field{Text: v}
}

// DateField formats v as a long date, or NotAvailable when v is blank.
func DateField(v string) Field {
	if strings.TrimSpace(v) == "" {
		return Field{Text: NotAvailable, Muted: true}
	}
	return Field{Text: FormatDate(v)}
}

type DocumentRow struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	PreviewURL  string `json:"preview_url"`
	DownloadURL string `json:"download_url"`
}

type TimelineRow struct {
	Date  string `json:"date"`
	Event string `json:"event"`
}

// Results is the rendered form of a lookup.Result.
type Results struct {
	CaseNumber  Field         `json:"case_number"`
	Parties     Field         `json:"parties_names"`
	FilingDate  Field         `json:"filing_date"`
	NextHearing Field         `json:"next_hearing"`
	Status      Field         `json:"case_status"`
	Duration    Field         `json:"search_duration"`
	Documents   []DocumentRow `json:"documents"`
	Timeline    []TimelineRow `json:"timeline"`
	FromCache   bool          `json:"from_cache"`
}

// NoDocumentsText is the placeholder for an empty document list.
func (r Results) NoDocumentsText() string { return NoDocuments }

// NoTimelineText is the placeholder for an empty timeline.
func (r Results) NoTimelineText() string { return NoTimeline }

// Render projects res onto display fields. The output depends only on res,
// so rendering the same result twice yields the same value.
func Render(res *lookup.Result) Results {
	if res == nil {
		res = &lookup.Result{}
	}

	out := Results{
		CaseNumber:  TextField(res.CaseNumber),
		Parties:     TextField(res.PartiesNames),
		FilingDate:  DateField(res.FilingDate),
		NextHearing: DateField(res.NextHearingDate),
		Status:      TextField(res.CaseStatus),
		Duration:    Field{Text: FormatDuration(res.SearchDuration)},
		Documents:   make([]DocumentRow, 0, len(res.PDFLinks)),
		Timeline:    make([]TimelineRow, 0, len(res.Timeline)),
		FromCache:   res.FromCache,
	}

	for i, doc := range res.PDFLinks {
		row := DocumentRow{
			Title:       doc.Title,
			Date:        DateNotAvailable,
			PreviewURL:  doc.URL,
			DownloadURL: DownloadURL(doc.URL),
		}
		if strings.TrimSpace(row.Title) == "" {
			row.Title = fmt.Sprintf("Document %d", i+1)
		}
		if doc.Date != "" {
			row.Date = FormatDate(doc.Date)
		}
		out.Documents = append(out.Documents, row)
	}

	for _, ev := range res.Timeline {
		out.Timeline = append(out.Timeline, TimelineRow{
			Date:  FormatDate(ev.Date),
			Event: ev.Event,
		})
	}

	return out
}
