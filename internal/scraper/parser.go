package scraper

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-rod/rod"

	"github.com/JustJay7/case-lookup/internal/lookup"
	"github.com/JustJay7/case-lookup/pkg/logger"
)

var (
	yearPattern       = regexp.MustCompile(`\d{4}`)
	filingYearPattern = regexp.MustCompile(`Year[\.\s:]+(\d{4})`)
	datePattern       = regexp.MustCompile(`(\d{1,2}[\-\/]\d{1,2}[\-\/]\d{4})`)
	caseSplitPattern  = regexp.MustCompile(`[\/\-]`)
	spacePattern      = regexp.MustCompile(`\s+`)
	partySepPattern   = regexp.MustCompile(`\s+(?:and|AND|And|&)\s+`)
	partyTailPattern  = regexp.MustCompile(`\s*(?:etc\.?|\d+\.?)$`)
	petitionerPattern = regexp.MustCompile(`(?i)Petitioner\(?s?\)?:?\s*([^\n\r]+)`)
	respondentPattern = regexp.MustCompile(`(?i)Respondent\(?s?\)?:?\s*([^\n\r]+)`)
	dayNamePattern    = regexp.MustCompile(`(?i)(Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday),?\s*`)

	caseNumberPatterns = []*regexp.Regexp{
		regexp.MustCompile(`Case\s*No[\.\s:]+([A-Z]+[\/\-]?\d+[\/\-]?\d+)`),
		regexp.MustCompile(`CNR\s*Number[\.\s:]+([A-Z0-9]+)`),
		regexp.MustCompile(`([A-Z]+[\/\-]\d+[\/\-]\d{4})`),
	}
)

// Date formats used by Indian court systems.
var courtDateFormats = []string{
	"02-01-2006",
	"02/01/2006",
	"02.01.2006",
	"02-Jan-2006",
	"02-January-2006",
	"02 Jan 2006",
	"02 January 2006",
	"2006-01-02",
	"Jan 02, 2006",
	"January 02, 2006",
}

// Phrases the court site shows when a search has no result.
var notFoundPhrases = []string{
	"No records found",
	"No Record Found",
	"Invalid case number",
	"Case not found",
	"No data available",
}

// Phrases shown when the CAPTCHA was rejected.
var captchaPhrases = []string{
	"Wrong Captcha",
	"Invalid Captcha",
}

// caseDetails collects what the parser finds before it is turned into a
// lookup.Result.
type caseDetails struct {
	CaseNumber  string
	CaseType    string
	FilingYear  string
	FilingDate  string
	NextHearing string
	Status      string
	Judge       string
	Petitioners []string
	Respondents []string
	Documents   []lookup.Document
	Timeline    []lookup.TimelineEvent
}

// Result converts the parsed details. Parties are rendered one side per line.
func (d *caseDetails) Result() *lookup.Result {
	return &lookup.Result{
		CaseNumber:      d.CaseNumber,
		PartiesNames:    formatParties(d.Petitioners, d.Respondents),
		FilingDate:      d.FilingDate,
		NextHearingDate: d.NextHearing,
		CaseStatus:      d.Status,
		PDFLinks:        d.Documents,
		Timeline:        d.Timeline,
	}
}

// Parser extracts case details from court result pages
type Parser struct {
	logger *logger.Logger
}

func NewParser(logger *logger.Logger) *Parser {
	return &Parser{logger: logger}
}

// applyField maps one labelled value from a details table.
func (p *Parser) applyField(label, value string, d *caseDetails) {
	label = strings.ToLower(strings.TrimSpace(label))
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}

	switch {
	case strings.Contains(label, "case number") || strings.Contains(label, "case no") || strings.Contains(label, "cnr"):
		d.CaseNumber = value
	case strings.Contains(label, "case type"):
		d.CaseType = value
	case strings.Contains(label, "filing number"):
		if y := yearPattern.FindString(value); y != "" && d.FilingYear == "" {
			d.FilingYear = y
		}
	case strings.Contains(label, "filing date") || strings.Contains(label, "date of filing"):
		d.FilingDate = NormalizeDate(value)
	case strings.Contains(label, "registration date"):
		if d.FilingDate == "" {
			d.FilingDate = NormalizeDate(value)
		}
	case strings.Contains(label, "next date") || strings.Contains(label, "next hearing"):
		d.NextHearing = NormalizeDate(value)
	case strings.Contains(label, "stage") || strings.Contains(label, "status"):
		d.Status = value
	case strings.Contains(label, "judge") || strings.Contains(label, "coram"):
		d.Judge = value
	case strings.Contains(label, "year"):
		d.FilingYear = value
	}
}

// applyRows maps label/value rows, as found in tables or label/value div
// pairs.
func (p *Parser) applyRows(rows [][]string, d *caseDetails) {
	for _, cells := range rows {
		if len(cells) < 2 {
			continue
		}
		p.applyField(strings.TrimSuffix(strings.TrimSpace(cells[0]), ":"), cells[1], d)
	}
}

// parseText is the fallback when no structured layout matched.
func (p *Parser) parseText(text string, d *caseDetails) {
	if d.CaseNumber == "" {
		for _, re := range caseNumberPatterns {
			if m := re.FindStringSubmatch(text); len(m) > 1 {
				d.CaseNumber = m[1]
				break
			}
		}
	}

	if d.CaseType == "" && d.CaseNumber != "" {
		if parts := caseSplitPattern.Split(d.CaseNumber, -1); len(parts) > 0 {
			d.CaseType = parts[0]
		}
	}

	if m := filingYearPattern.FindStringSubmatch(text); len(m) > 1 && d.FilingYear == "" {
		d.FilingYear = m[1]
	}

	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		date := datePattern.FindString(line)
		if date == "" {
			continue
		}
		if d.FilingDate == "" && (strings.Contains(lower, "filing date") || strings.Contains(lower, "institution")) {
			d.FilingDate = NormalizeDate(date)
		}
		if d.NextHearing == "" && strings.Contains(lower, "next") && strings.Contains(lower, "date") {
			d.NextHearing = NormalizeDate(date)
		}
	}

	if len(d.Petitioners) == 0 && len(d.Respondents) == 0 {
		d.Petitioners, d.Respondents = partiesFromText(text)
	}
}

// applyPartyRows reads a party table: side, name, then advocate columns.
func (p *Parser) applyPartyRows(rows [][]string, d *caseDetails) {
	for _, cells := range rows {
		if len(cells) < 2 {
			continue
		}
		side := strings.ToLower(cells[0])
		name := strings.TrimSpace(cells[1])
		if name == "" {
			continue
		}
		switch {
		case strings.Contains(side, "petitioner"):
			d.Petitioners = append(d.Petitioners, name)
		case strings.Contains(side, "respondent"):
			d.Respondents = append(d.Respondents, name)
		}
	}
}

// applyHistory derives the status from a case history table when the
// details table had none.
func (p *Parser) applyHistory(rows []string, d *caseDetails) {
	for _, row := range rows {
		text := strings.ToLower(row)
		if strings.Contains(text, "disposed") || strings.Contains(text, "decided") {
			d.Status = "Disposed"
			return
		}
		if strings.Contains(text, "pending") && d.Status == "" {
			d.Status = "Pending"
		}
	}
}

// orderRow is one row of an orders table: the cell texts and the links
// found in it.
type orderRow struct {
	Cells []string
	Links []string
}

// applyOrders turns order rows into documents and timeline events. Rows
// without a parseable date are skipped.
func (p *Parser) applyOrders(rows []orderRow, baseURL string, d *caseDetails) {
	for _, row := range rows {
		if len(row.Cells) < 2 {
			continue
		}
		date := NormalizeDate(row.Cells[0])
		if _, err := time.Parse("2006-01-02", date); err != nil {
			continue
		}
		desc := strings.TrimSpace(row.Cells[1])
		d.Timeline = append(d.Timeline, lookup.TimelineEvent{Date: date, Event: desc})

		for _, href := range row.Links {
			lower := strings.ToLower(href)
			if strings.Contains(lower, "pdf") || strings.Contains(lower, "download") || strings.Contains(lower, "order") {
				d.Documents = append(d.Documents, lookup.Document{
					URL:   resolveURL(baseURL, href),
					Title: desc,
					Date:  date,
				})
				break
			}
		}
	}
}

// ClassifyPage looks for the messages the court site shows instead of a
// result. It returns the matched phrase and whether it concerns the CAPTCHA.
func ClassifyPage(bodyText string) (phrase string, captcha bool) {
	lower := strings.ToLower(bodyText)
	for _, ph := range captchaPhrases {
		if strings.Contains(lower, strings.ToLower(ph)) {
			return ph, true
		}
	}
	for _, ph := range notFoundPhrases {
		if strings.Contains(lower, strings.ToLower(ph)) {
			return ph, false
		}
	}
	return "", false
}

// NormalizeDate converts a court date to YYYY-MM-DD. Unrecognised input is
// returned trimmed.
func NormalizeDate(s string) string {
	s = spacePattern.ReplaceAllString(strings.TrimSpace(s), " ")
	if s == "" {
		return ""
	}
	for _, candidate := range []string{s, dayNamePattern.ReplaceAllString(s, "")} {
		for _, layout := range courtDateFormats {
			if t, err := time.Parse(layout, candidate); err == nil {
				return t.Format("2006-01-02")
			}
		}
	}
	return s
}

func partiesFromText(text string) (petitioners, respondents []string) {
	if m := petitionerPattern.FindStringSubmatch(text); len(m) > 1 {
		petitioners = extractPartyNames(m[1])
	}
	if m := respondentPattern.FindStringSubmatch(text); len(m) > 1 {
		respondents = extractPartyNames(m[1])
	}
	return petitioners, respondents
}

// extractPartyNames splits "A and B & C etc." into names.
func extractPartyNames(text string) []string {
	text = spacePattern.ReplaceAllString(strings.TrimSpace(text), " ")

	var names []string
	for _, part := range partySepPattern.Split(text, -1) {
		name := partyTailPattern.ReplaceAllString(strings.TrimSpace(part), "")
		if len(name) > 2 {
			names = append(names, name)
		}
	}
	return names
}

func formatParties(petitioners, respondents []string) string {
	var lines []string
	if len(petitioners) > 0 {
		lines = append(lines, "Petitioner: "+strings.Join(petitioners, ", "))
	}
	if len(respondents) > 0 {
		lines = append(lines, "Respondent: "+strings.Join(respondents, ", "))
	}
	return strings.Join(lines, "\n")
}

func resolveURL(base, ref string) string {
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil || b.Scheme == "" {
		return r.String()
	}
	return b.ResolveReference(r).String()
}

// ParseCaseDetails reads the case details page currently shown in page.
func (p *Parser) ParseCaseDetails(page *rod.Page) (*caseDetails, error) {
	d := &caseDetails{}

	container, err := page.Element("div#case_details, div.case-info, div.container")
	if err != nil {
		return nil, fmt.Errorf("case details container not found: %w", err)
	}

	if ok, table, _ := container.Has("table"); ok {
		p.applyRows(tableRows(table, "td, th"), d)
	}

	if d.CaseNumber == "" {
		p.applyRows(labelPairs(container), d)
	}

	if ok, partyTable, _ := page.Has("table#party_table, table.party-table, div#party_details table"); ok {
		p.applyPartyRows(tableRows(partyTable, "td"), d)
	}

	text, _ := container.Text()
	p.parseText(text, d)

	if d.CaseNumber == "" {
		return nil, fmt.Errorf("failed to extract case number")
	}

	if ok, historyTable, _ := page.Has("table#case_history, table.case-history, div#history table"); ok {
		var rows []string
		for _, cells := range tableRows(historyTable, "td") {
			rows = append(rows, strings.Join(cells, " "))
		}
		p.applyHistory(rows, d)
	}

	return d, nil
}

// ParseOrders reads the orders table of the current page into d.
func (p *Parser) ParseOrders(page *rod.Page, d *caseDetails) error {
	selectors := []string{
		"table#order_table",
		"table.order-table",
		"div#order_details table",
		"table[summary*='order']",
		"table[summary*='Order']",
	}

	var table *rod.Element
	for _, sel := range selectors {
		if ok, t, _ := page.Has(sel); ok {
			table = t
			break
		}
	}
	if table == nil {
		tables, _ := page.Elements("table")
		for _, t := range tables {
			text, _ := t.Text()
			if strings.Contains(strings.ToLower(text), "order") && (strings.Contains(text, "PDF") || strings.Contains(text, "Download")) {
				table = t
				break
			}
		}
	}
	if table == nil {
		return fmt.Errorf("orders table not found")
	}

	trs, err := table.Elements("tr")
	if err != nil {
		return fmt.Errorf("failed to read orders table: %w", err)
	}

	var rows []orderRow
	for _, tr := range trs {
		var row orderRow
		tds, _ := tr.Elements("td")
		for _, td := range tds {
			text, _ := td.Text()
			row.Cells = append(row.Cells, strings.TrimSpace(text))
			links, _ := td.Elements("a")
			for _, a := range links {
				if href, err := a.Attribute("href"); err == nil && href != nil {
					row.Links = append(row.Links, *href)
				}
			}
		}
		rows = append(rows, row)
	}

	baseURL := ""
	if info, err := page.Info(); err == nil {
		baseURL = info.URL
	}
	p.applyOrders(rows, baseURL, d)
	return nil
}

// ParseError returns the error shown on the page, if any.
func (p *Parser) ParseError(page *rod.Page) (string, bool) {
	selectors := []string{
		".error-message",
		".alert-danger",
		"#errorMsg",
		"div#errormsg",
		"div.error",
		"span.error",
	}
	for _, sel := range selectors {
		if ok, el, _ := page.Has(sel); ok {
			if text, _ := el.Text(); strings.TrimSpace(text) != "" {
				_, captcha := ClassifyPage(text)
				return strings.TrimSpace(text), captcha
			}
		}
	}

	body, err := page.Element("body")
	if err != nil {
		return "", false
	}
	text, _ := body.Text()
	return ClassifyPage(text)
}

func tableRows(table *rod.Element, cellSelector string) [][]string {
	trs, err := table.Elements("tr")
	if err != nil {
		return nil
	}
	var rows [][]string
	for _, tr := range trs {
		cells, _ := tr.Elements(cellSelector)
		var row []string
		for _, cell := range cells {
			text, _ := cell.Text()
			row = append(row, strings.TrimSpace(text))
		}
		rows = append(rows, row)
	}
	return rows
}

// labelPairs pairs every "Label:" element with the element after it.
func labelPairs(container *rod.Element) [][]string {
	els, err := container.Elements("div, span")
	if err != nil {
		return nil
	}
	var rows [][]string
	for i := 0; i+1 < len(els); i++ {
		text, _ := els[i].Text()
		text = strings.TrimSpace(text)
		if !strings.HasSuffix(text, ":") {
			continue
		}
		value, _ := els[i+1].Text()
		rows = append(rows, []string{text, value})
	}
	return rows
}
