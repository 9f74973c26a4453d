// Package scraper looks cases up on the court website with a headless
// browser.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/JustJay7/case-lookup/internal/apperr"
	"github.com/JustJay7/case-lookup/internal/config"
	"github.com/JustJay7/case-lookup/internal/lookup"
	"github.com/JustJay7/case-lookup/pkg/logger"
)

// StatusPath is the case status page of the court website.
const StatusPath = "/app/get-case-type-status"

// errNoResult marks a search the court site answered without a case.
var errNoResult = errors.New("no result")

// Scraper is a lookup.Client backed by a headless browser. Each search uses
// its own page.
type Scraper struct {
	cfg     *config.Config
	browser *rod.Browser
	parser  *Parser
	captcha *CaptchaSolver
	logger  *logger.Logger

	mu sync.Mutex
}

// NewScraper launches the browser.
func NewScraper(cfg *config.Config, captcha *CaptchaSolver, logger *logger.Logger) (*Scraper, error) {
	l := launcher.New().
		Headless(cfg.HeadlessMode).
		Set("user-agent", cfg.UserAgent).
		Set("disable-blink-features", "AutomationControlled").
		Delete("enable-automation")

	if cfg.BrowserPath != "" {
		l = l.Bin(cfg.BrowserPath)
	}
	if cfg.LogLevel == "debug" {
		l = l.Devtools(true)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &Scraper{
		cfg:     cfg,
		browser: browser,
		parser:  NewParser(logger),
		captcha: captcha,
		logger:  logger,
	}, nil
}

func (s *Scraper) Close() error {
	return s.browser.Close()
}

// Search fills the court's case status form for q and parses the result.
func (s *Scraper) Search(ctx context.Context, q lookup.Query) (*lookup.Result, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ScraperTimeout)
	defer cancel()

	page, err := s.newPage()
	if err != nil {
		return nil, apperr.Unavailable(fmt.Errorf("failed to create page: %w", err)).WithOp("scraper.Search")
	}
	defer func() {
		if err := page.Close(); err != nil {
			s.logger.Debug("Failed to close page", "error", err)
		}
	}()
	page = page.Context(ctx)

	// rod reports some failures by panicking
	var details *caseDetails
	if tryErr := rod.Try(func() { details, err = s.search(ctx, page, q) }); tryErr != nil {
		err = tryErr
	}
	if err != nil {
		return nil, s.classify(ctx, err)
	}

	res := details.Result()
	if res.CaseNumber == "" {
		res.CaseNumber = q.Display()
	}
	res.SearchDuration = math.Round(time.Since(start).Seconds()*100) / 100
	return res, nil
}

func (s *Scraper) newPage() (*rod.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	page, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{Width: 1920, Height: 1080, DeviceScaleFactor: 1}); err != nil {
		return nil, err
	}
	if _, err := page.SetExtraHeaders([]string{"Accept-Language", "en-US,en;q=0.9"}); err != nil {
		return nil, err
	}
	return page, nil
}

func (s *Scraper) search(ctx context.Context, page *rod.Page, q lookup.Query) (*caseDetails, error) {
	courtURL := strings.TrimRight(s.cfg.CourtBaseURL, "/") + StatusPath
	s.logger.Info("Navigating to court website", "url", courtURL)

	if err := page.Navigate(courtURL); err != nil {
		return nil, apperr.Unavailable(fmt.Errorf("failed to navigate: %w", err))
	}
	if err := page.WaitLoad(); err != nil {
		s.logger.Warn("Page load incomplete", "error", err)
	}

	caseType, err := page.Element("#case_type")
	if err != nil {
		return nil, fmt.Errorf("case type select not found: %w", err)
	}
	if err := caseType.Select([]string{q.CaseType}, true, rod.SelectorTypeText); err != nil {
		return nil, apperr.Validation(fmt.Sprintf("Case type %s is not offered by the court website", q.CaseType))
	}

	caseNumber, err := page.Element("#case_number")
	if err != nil {
		return nil, fmt.Errorf("case number input not found: %w", err)
	}
	if err := caseNumber.Input(q.CaseNumber); err != nil {
		return nil, fmt.Errorf("failed to enter case number: %w", err)
	}

	year, err := page.Element("#case_year")
	if err != nil {
		return nil, fmt.Errorf("year select not found: %w", err)
	}
	if err := year.Select([]string{strconv.Itoa(q.FilingYear)}, true, rod.SelectorTypeText); err != nil {
		return nil, fmt.Errorf("failed to select year: %w", err)
	}

	if err := s.handleCaptcha(ctx, page); err != nil {
		return nil, fmt.Errorf("captcha handling failed: %w", err)
	}

	submit, err := page.Element("#search")
	if err != nil {
		return nil, fmt.Errorf("submit button not found: %w", err)
	}
	wait := page.WaitNavigation(proto.PageLifecycleEventNameNetworkAlmostIdle)
	if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return nil, fmt.Errorf("failed to submit search: %w", err)
	}
	wait()

	if msg, captcha := s.parser.ParseError(page); msg != "" {
		if captcha {
			return nil, fmt.Errorf("captcha rejected: %s", msg)
		}
		return nil, fmt.Errorf("%w: %s", errNoResult, msg)
	}

	if err := s.openDetails(page); err != nil {
		return nil, err
	}

	details, err := s.parser.ParseCaseDetails(page)
	if err != nil {
		return nil, fmt.Errorf("failed to parse results: %w", err)
	}

	if err := s.fetchOrders(page, details); err != nil {
		s.logger.Warn("Failed to fetch orders", "error", err)
	}
	return details, nil
}

// openDetails follows the "view" link of the results table, if any.
func (s *Scraper) openDetails(page *rod.Page) error {
	ok, table, _ := page.Has("table.table")
	if !ok {
		return fmt.Errorf("%w: no results table found", errNoResult)
	}
	ok, view, _ := table.Has("a[href*='view']")
	if !ok {
		return nil
	}
	wait := page.WaitNavigation(proto.PageLifecycleEventNameNetworkAlmostIdle)
	if err := view.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to open case details: %w", err)
	}
	wait()
	return nil
}

// fetchOrders opens the Orders/Judgements tab and parses it into d.
func (s *Scraper) fetchOrders(page *rod.Page, d *caseDetails) error {
	links, err := page.Elements("a")
	if err != nil {
		return err
	}
	for _, link := range links {
		text, _ := link.Text()
		if !strings.Contains(text, "Orders") && !strings.Contains(text, "Judgements") {
			continue
		}
		wait := page.WaitNavigation(proto.PageLifecycleEventNameNetworkAlmostIdle)
		if err := link.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return err
		}
		wait()
		return s.parser.ParseOrders(page, d)
	}
	return nil
}

// classify turns a scraping failure into the lookup error contract.
func (s *Scraper) classify(ctx context.Context, err error) error {
	var appErr *apperr.Error
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, errNoResult):
		s.logger.Info("Court site returned no result", "reason", err)
		return apperr.NotFound(apperr.MsgNotFound)
	case ctx.Err() != nil:
		return apperr.Unavailable(ctx.Err()).WithOp("scraper.Search")
	default:
		s.logger.Error("Scraping failed", "error", err)
		return apperr.Unavailable(err).WithOp("scraper.Search")
	}
}
