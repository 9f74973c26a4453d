// Package ui coordinates the page during a search and owns the user's
// preferences. All state lives in a Controller; nothing is global.
package ui

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JustJay7/case-lookup/internal/apperr"
	"github.com/JustJay7/case-lookup/internal/form"
	"github.com/JustJay7/case-lookup/internal/history"
	"github.com/JustJay7/case-lookup/internal/lookup"
	"github.com/JustJay7/case-lookup/internal/render"
	"github.com/JustJay7/case-lookup/internal/storage"
	"github.com/JustJay7/case-lookup/pkg/logger"
)

// ThemeKey is the storage key of the theme preference.
const ThemeKey = "theme"

// State is the search lifecycle state.
type State int

const (
	StateIdle State = iota
	StateSearching
	StateSuccess
	StateFailure
)

func (s State) String() string {
	switch s {
	case StateSearching:
		return "searching"
	case StateSuccess:
		return "success"
	case StateFailure:
		return "failure"
	default:
		return "idle"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ErrSearchInProgress is returned for a submit made while a search is
// running.
var ErrSearchInProgress = apperr.Busy()

// Journal records searches that reach the lookup client. Begin returns an
// identifier passed back to Finish.
type Journal interface {
	Begin(ctx context.Context, q lookup.Query) (uint, error)
	Finish(ctx context.Context, id uint, q lookup.Query, res *lookup.Result, searchErr error, took time.Duration) (uint, error)
}

// Outcome describes the end of a submit.
type Outcome struct {
	State    State          `json:"state"`
	Query    *lookup.Query  `json:"query,omitempty"`
	Result   *lookup.Result `json:"result,omitempty"`
	Message  string         `json:"message,omitempty"`
	QueryID  uint           `json:"query_id,omitempty"`
	RecordID uint           `json:"record_id,omitempty"`
}

// Deps are the collaborators of a Controller. Journal may be nil.
type Deps struct {
	Client  lookup.Client
	Builder *form.Builder
	Page    *render.Page
	History *history.Store
	Prefs   storage.Store
	Journal Journal
	Logger  *logger.Logger

	// SearchTimeout bounds a search once started; zero means no bound.
	SearchTimeout time.Duration
}

// Controller runs the search lifecycle for one user. At most one search is
// in flight at a time; a concurrent submit is rejected, not queued.
type Controller struct {
	client  lookup.Client
	builder *form.Builder
	page    *render.Page
	history *history.Store
	prefs   storage.Store
	journal Journal
	logger  *logger.Logger
	timeout time.Duration

	searching atomic.Bool

	mu    sync.Mutex
	state State
	theme string
	last  Outcome
}

func NewController(d Deps) *Controller {
	if d.Builder == nil {
		d.Builder = form.NewBuilder(nil)
	}
	if d.Logger == nil {
		d.Logger = logger.NewNop()
	}
	c := &Controller{
		client:  d.Client,
		builder: d.Builder,
		page:    d.Page,
		history: d.History,
		prefs:   d.Prefs,
		journal: d.Journal,
		logger:  d.Logger,
		timeout: d.SearchTimeout,
		state:   StateIdle,
		theme:   render.ThemeLight,
	}
	d.History.SetView(d.Page)
	return c
}

// Init restores the theme and displays the recent searches.
func (c *Controller) Init(ctx context.Context) {
	theme := render.ThemeLight
	if v, ok, err := c.prefs.Get(ctx, ThemeKey); err != nil {
		c.logger.Warn("Failed to read theme preference", "error", err)
	} else if ok && (v == render.ThemeLight || v == render.ThemeDark) {
		theme = v
	}

	c.mu.Lock()
	c.theme = theme
	c.mu.Unlock()
	c.page.SetTheme(theme)

	c.history.Load(ctx)
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Searching reports whether a search is in flight.
func (c *Controller) Searching() bool {
	return c.searching.Load()
}

// Last returns the outcome of the most recent completed submit.
func (c *Controller) Last() Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Submit validates f and, if valid, runs the search. Validation failures
// show an inline message and leave the state unchanged. A submit made while
// another search runs returns ErrSearchInProgress without touching the page.
func (c *Controller) Submit(ctx context.Context, f form.Fields) (Outcome, error) {
	if !c.searching.CompareAndSwap(false, true) {
		return Outcome{State: StateSearching, Message: apperr.MsgBusy}, ErrSearchInProgress
	}

	f.CaseNumber = form.SanitizeCaseNumber(f.CaseNumber)
	c.page.SetForm(render.FormState{
		CaseType:   f.CaseType,
		CaseNumber: f.CaseNumber,
		FilingYear: f.FilingYear,
	})
	c.page.HideError()
	c.page.HideResults()

	q, err := c.builder.Build(f)
	if err != nil {
		c.searching.Store(false)
		msg := apperr.UserMessage(err)
		c.page.SetInlineMessage(msg)
		return Outcome{State: c.State(), Message: msg}, err
	}

	return c.search(ctx, q)
}

func (c *Controller) search(ctx context.Context, q lookup.Query) (out Outcome, err error) {
	// a started search is not aborted when the caller goes away
	ctx = context.WithoutCancel(ctx)
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.enter()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Search panicked", "query", q.Display(), "panic", r)
			err = apperr.Wrap(apperr.KindInternal, apperr.MsgNetwork, fmt.Errorf("panic: %v", r))
			out = c.fail(q, err, out.QueryID)
		}
		c.exit(out)
	}()

	var queryID uint
	if c.journal != nil {
		id, jerr := c.journal.Begin(ctx, q)
		if jerr != nil {
			c.logger.Warn("Failed to log query", "error", jerr)
		}
		queryID = id
		out.QueryID = id
	}

	c.logger.Info("Search initiated", "query_id", queryID, "case", q.Display())
	start := time.Now()
	res, err := c.client.Search(ctx, q)
	if err == nil && res == nil {
		err = apperr.New(apperr.KindInternal, apperr.MsgGeneric)
	}

	var recordID uint
	if c.journal != nil {
		id, jerr := c.journal.Finish(ctx, queryID, q, res, err, time.Since(start))
		if jerr != nil {
			c.logger.Warn("Failed to record search outcome", "query_id", queryID, "error", jerr)
		}
		recordID = id
	}

	if err != nil {
		return c.fail(q, err, queryID), err
	}

	c.page.ShowResults(render.Render(res))
	if _, herr := c.history.Record(ctx, q, res); herr != nil {
		c.logger.Warn("Failed to record recent search", "error", herr)
	}

	c.logger.Info("Search completed", "query_id", queryID, "duration", time.Since(start).String(), "from_cache", res.FromCache)
	return Outcome{
		State:    StateSuccess,
		Query:    &q,
		Result:   res,
		QueryID:  queryID,
		RecordID: recordID,
	}, nil
}

func (c *Controller) fail(q lookup.Query, err error, queryID uint) Outcome {
	msg := apperr.UserMessage(err)
	switch apperr.GetKind(err) {
	case apperr.KindNotFound, apperr.KindValidation:
		c.logger.Info("Search returned no result", "case", q.Display(), "reason", msg)
	default:
		c.logger.Error("Search error", "case", q.Display(), "error", err)
	}
	c.page.ShowError(msg)
	return Outcome{State: StateFailure, Query: &q, Message: msg, QueryID: queryID}
}

func (c *Controller) enter() {
	c.mu.Lock()
	c.state = StateSearching
	c.mu.Unlock()
	c.page.SetSearching(true)
}

// exit runs after every search, whatever its outcome.
func (c *Controller) exit(out Outcome) {
	c.page.SetSearching(false)

	c.mu.Lock()
	c.state = out.State
	c.last = out
	c.mu.Unlock()

	c.searching.Store(false)
}

// ClearForm resets the form and hides the error and results panels.
func (c *Controller) ClearForm() {
	c.page.SetForm(render.FormState{})
	c.page.HideError()
	c.page.HideResults()
}

// Input applies as-you-type sanitization to a form field and returns the
// stored value.
func (c *Controller) Input(field, value string) string {
	f := c.page.Form()
	switch field {
	case "case_number":
		value = form.SanitizeCaseNumber(value)
		f.CaseNumber = value
	case "case_type":
		f.CaseType = value
	case "filing_year":
		f.FilingYear = value
	default:
		return value
	}
	c.page.SetForm(f)
	return value
}

// SelectRecent fills the form from the i-th recent search. It does not
// search.
func (c *Controller) SelectRecent(ctx context.Context, i int) (history.Entry, bool) {
	e, ok := c.history.Select(ctx, i)
	if !ok {
		return history.Entry{}, false
	}
	c.page.SetForm(render.FormState{
		CaseType:   e.CaseType,
		CaseNumber: e.CaseNumber,
		FilingYear: e.Year,
	})
	return e, true
}

// ClearHistory removes the recent searches.
func (c *Controller) ClearHistory(ctx context.Context) error {
	return c.history.Clear(ctx)
}

// Recent returns the stored recent searches.
func (c *Controller) Recent(ctx context.Context) []history.Entry {
	return c.history.Entries(ctx)
}

func (c *Controller) Theme() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.theme
}

// ToggleTheme flips between light and dark and persists the choice.
func (c *Controller) ToggleTheme(ctx context.Context) (string, error) {
	c.mu.Lock()
	next := render.ThemeDark
	if c.theme == render.ThemeDark {
		next = render.ThemeLight
	}
	c.theme = next
	c.mu.Unlock()

	c.page.SetTheme(next)
	if err := c.prefs.Set(ctx, ThemeKey, next); err != nil {
		return next, fmt.Errorf("failed to save theme: %w", err)
	}
	return next, nil
}

// ReportLink is the mailto link for reporting the error currently shown.
func (c *Controller) ReportLink() string {
	return render.ReportLink(c.page.Snapshot().Error.Message)
}

// ShareText is the case shown in the results panel, used when sharing.
func (c *Controller) ShareText() string {
	s := c.page.Snapshot()
	if s.Results == nil || s.Results.CaseNumber.Muted {
		return ""
	}
	return s.Results.CaseNumber.Text
}
