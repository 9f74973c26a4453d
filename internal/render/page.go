package render

import (
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/JustJay7/case-lookup/internal/history"
)

// Themes
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Submit button labels
const (
	LabelSearch    = "Search Case"
	LabelSearching = "Searching..."
)

// ReportAddress receives error reports.
const ReportAddress = "support@courtfetcher.com"

type FormState struct {
	CaseType   string `json:"case_type"`
	CaseNumber string `json:"case_number"`
	FilingYear string `json:"filing_year"`
	Message    string `json:"message,omitempty"`
}

type Button struct {
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}

type ErrorPanel struct {
	Visible    bool   `json:"visible"`
	Message    string `json:"message"`
	ReportLink string `json:"report_link,omitempty"`
}

type RecentRow struct {
	Index int    `json:"index"`
	Label string `json:"label"`
	Date  string `json:"date"`
}

// State is a point-in-time copy of the page, safe to hand to templates and
// JSON encoders.
type State struct {
	Theme        string      `json:"theme"`
	Form         FormState   `json:"form"`
	Submit       Button      `json:"submit"`
	Loading      bool        `json:"loading"`
	Error        ErrorPanel  `json:"error"`
	Results      *Results    `json:"results,omitempty"`
	Recent       []RecentRow `json:"recent"`
	OpenModals   []string    `json:"open_modals"`
	ScrollLocked bool        `json:"scroll_locked"`
	ShareURL     string      `json:"share_url,omitempty"`
}

// ThemeIcon is the icon of the theme toggle: a sun in dark mode.
func (s State) ThemeIcon() string {
	if s.Theme == ThemeDark {
		return "fas fa-sun"
	}
	return "fas fa-moon"
}

// ModalOpen reports whether the modal id is shown.
func (s State) ModalOpen(id string) bool {
	for _, m := range s.OpenModals {
		if m == id {
			return true
		}
	}
	return false
}

// Page is the presentation model of one user's page. Every update replaces
// the affected panel wholesale. It is safe for concurrent use.
type Page struct {
	mu sync.RWMutex

	theme        string
	form         FormState
	submit       Button
	loading      bool
	errPanel     ErrorPanel
	results      *Results
	recent       []RecentRow
	modals       map[string]bool
	scrollLocked bool
	shareURL     string
}

func NewPage() *Page {
	return &Page{
		theme:  ThemeLight,
		submit: Button{Label: LabelSearch},
		recent: []RecentRow{},
		modals: make(map[string]bool),
	}
}

func (p *Page) SetTheme(theme string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.theme = theme
}

func (p *Page) SetForm(f FormState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.form = f
}

func (p *Page) Form() FormState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.form
}

// SetInlineMessage shows a validation message under the form.
func (p *Page) SetInlineMessage(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.form.Message = msg
}

// SetSearching switches the submit control and the progress indicator.
func (p *Page) SetSearching(searching bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = searching
	p.submit.Disabled = searching
	if searching {
		p.submit.Label = LabelSearching
	} else {
		p.submit.Label = LabelSearch
	}
}

// ShowResults renders res into the results panel, replacing prior content.
func (p *Page) ShowResults(res Results) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = &res
}

func (p *Page) HideResults() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = nil
}

// ShowError displays msg in the error panel with a report link.
func (p *Page) ShowError(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errPanel = ErrorPanel{
		Visible:    true,
		Message:    msg,
		ReportLink: ReportLink(msg),
	}
}

func (p *Page) HideError() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errPanel = ErrorPanel{}
}

// ShowRecent replaces the recent-searches list. An empty list hides the
// panel.
func (p *Page) ShowRecent(entries []history.Entry) {
	rows := make([]RecentRow, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, RecentRow{
			Index: i,
			Label: e.Label(),
			Date:  FormatShortDate(e.Timestamp),
		})
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.recent = rows
}

func (p *Page) SetModal(id string, open bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if open {
		p.modals[id] = true
	} else {
		delete(p.modals, id)
	}
}

func (p *Page) SetScrollLock(locked bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scrollLocked = locked
}

func (p *Page) SetShareURL(u string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shareURL = u
}

// Snapshot copies the current page state.
func (p *Page) Snapshot() State {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := State{
		Theme:        p.theme,
		Form:         p.form,
		Submit:       p.submit,
		Loading:      p.loading,
		Error:        p.errPanel,
		Recent:       append([]RecentRow{}, p.recent...),
		OpenModals:   make([]string, 0, len(p.modals)),
		ScrollLocked: p.scrollLocked,
		ShareURL:     p.shareURL,
	}
	if p.results != nil {
		r := *p.results
		r.Documents = append([]DocumentRow{}, p.results.Documents...)
		r.Timeline = append([]TimelineRow{}, p.results.Timeline...)
		s.Results = &r
	}
	for id := range p.modals {
		s.OpenModals = append(s.OpenModals, id)
	}
	sort.Strings(s.OpenModals)
	return s
}

// ReportLink builds the mailto link used to report msg.
func ReportLink(msg string) string {
	return "mailto:" + ReportAddress + "?subject=" + MailtoEscape("Error Report") + "&body=" + MailtoEscape(msg)
}

// MailtoEscape query-escapes s with %20 for spaces, which mail clients
// expect.
func MailtoEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
