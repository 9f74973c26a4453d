package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/JustJay7/case-lookup/internal/apperr"
	"github.com/JustJay7/case-lookup/internal/cache"
	"github.com/JustJay7/case-lookup/internal/config"
	"github.com/JustJay7/case-lookup/internal/database"
	"github.com/JustJay7/case-lookup/internal/form"
	"github.com/JustJay7/case-lookup/internal/lookup"
	"github.com/JustJay7/case-lookup/internal/render"
	"github.com/JustJay7/case-lookup/internal/scraper"
	"github.com/JustJay7/case-lookup/internal/session"
	"github.com/JustJay7/case-lookup/internal/ui"
	"github.com/JustJay7/case-lookup/pkg/logger"
)

// Title of the application pages.
const Title = "Court Data Fetcher"

// Deps are the services behind the handlers. Cache and Captcha are nil
// when the lookup mode does not use them.
type Deps struct {
	Sessions   *session.Manager
	Client     lookup.Client
	Builder    *form.Builder
	Repo       *database.Repository
	Cache      cache.Cache
	Captcha    *scraper.CaptchaSolver
	Downloader *scraper.Downloader
	Config     *config.Config
	Version    string
	Logger     *logger.Logger
}

// Handlers holds all HTTP handlers
type Handlers struct {
	sessions   *session.Manager
	client     lookup.Client
	builder    *form.Builder
	repo       *database.Repository
	cache      cache.Cache
	captcha    *scraper.CaptchaSolver
	downloader *scraper.Downloader
	cfg        *config.Config
	version    string
	logger     *logger.Logger
	now        func() time.Time
}

// NewHandlers creates a new handlers instance
func NewHandlers(d Deps) *Handlers {
	if d.Builder == nil {
		d.Builder = form.NewBuilder(nil)
	}
	if d.Logger == nil {
		d.Logger = logger.NewNop()
	}
	return &Handlers{
		sessions:   d.Sessions,
		client:     d.Client,
		builder:    d.Builder,
		repo:       d.Repo,
		cache:      d.Cache,
		captcha:    d.Captcha,
		downloader: d.Downloader,
		cfg:        d.Config,
		version:    d.Version,
		logger:     d.Logger,
		now:        time.Now,
	}
}

func (h *Handlers) pageData(s *session.Session) gin.H {
	return gin.H{
		"Title":     Title,
		"CourtName": h.cfg.CourtName,
		"Version":   h.version,
		"State":     s.Page.Snapshot(),
		"CaseTypes": form.CaseTypes(),
		"Years":     form.YearOptions(h.now()),
	}
}

func (h *Handlers) renderPage(c *gin.Context, status int) {
	c.HTML(status, "index.html", h.pageData(currentSession(c)))
}

func (h *Handlers) renderError(c *gin.Context, status int, msg string) {
	c.HTML(status, "error.html", gin.H{
		"Title": Title,
		"Error": msg,
	})
}

// backHome ends a form post with a redirect to the page, so that reloading
// does not repeat the action.
func backHome(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/")
}

// HomePage renders the home page
func (h *Handlers) HomePage(c *gin.Context) {
	h.renderPage(c, http.StatusOK)
}

// SearchCase handles case search form submission. The page is rendered with
// the outcome applied: inline message, error panel or results.
func (h *Handlers) SearchCase(c *gin.Context) {
	var fields form.Fields
	if err := c.ShouldBind(&fields); err != nil {
		h.renderError(c, http.StatusBadRequest, "Invalid form data: "+err.Error())
		return
	}

	s := currentSession(c)
	status := http.StatusOK
	if _, err := s.Controller.Submit(c.Request.Context(), fields); err != nil {
		status = apperr.HTTPStatus(err)
	}
	h.renderPage(c, status)
}

// ClearForm resets the search form
func (h *Handlers) ClearForm(c *gin.Context) {
	currentSession(c).Controller.ClearForm()
	backHome(c)
}

// SelectRecent fills the form from a recent search
func (h *Handlers) SelectRecent(c *gin.Context) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.renderError(c, http.StatusBadRequest, "Invalid recent search")
		return
	}
	if _, ok := currentSession(c).Controller.SelectRecent(c.Request.Context(), i); !ok {
		h.renderError(c, http.StatusNotFound, "Recent search not found")
		return
	}
	backHome(c)
}

// ToggleTheme switches between the light and dark theme
func (h *Handlers) ToggleTheme(c *gin.Context) {
	if _, err := currentSession(c).Controller.ToggleTheme(c.Request.Context()); err != nil {
		h.logger.Warn("Failed to persist theme", "error", err)
	}
	backHome(c)
}

// ShowModal opens a modal. Opening the share modal also computes the share
// link of the case on display.
func (h *Handlers) ShowModal(c *gin.Context) {
	s := currentSession(c)
	id := c.Param("id")

	var err error
	if id == ui.ModalShare {
		_, err = s.Modals.ShowShare(origin(c), s.Controller.ShareText())
	} else {
		err = s.Modals.Show(id)
	}
	if err != nil {
		h.renderError(c, apperr.HTTPStatus(err), apperr.UserMessage(err))
		return
	}
	backHome(c)
}

// CloseModal closes a modal
func (h *Handlers) CloseModal(c *gin.Context) {
	if err := currentSession(c).Modals.Close(c.Param("id")); err != nil {
		h.renderError(c, apperr.HTTPStatus(err), apperr.UserMessage(err))
		return
	}
	backHome(c)
}

// ShareVia redirects to the link sharing the current case and closes the
// share modal.
func (h *Handlers) ShareVia(c *gin.Context) {
	if c.Param("id") != ui.ModalShare {
		h.renderError(c, http.StatusNotFound, "Modal cannot share")
		return
	}
	link, err := currentSession(c).Modals.ShareVia(c.Param("method"))
	if err != nil {
		h.renderError(c, apperr.HTTPStatus(err), apperr.UserMessage(err))
		return
	}
	c.Redirect(http.StatusSeeOther, link)
}

// SharedCase opens a shared link: the form is filled with the shared case,
// ready to search.
func (h *Handlers) SharedCase(c *gin.Context) {
	if q, ok := lookup.ParseDisplay(c.Query("case")); ok {
		ctrl := currentSession(c).Controller
		ctrl.Input(ui.TargetCaseType, q.CaseType)
		ctrl.Input(ui.TargetCaseNumber, q.CaseNumber)
		ctrl.Input(ui.TargetFilingYear, strconv.Itoa(q.FilingYear))
	}
	h.renderPage(c, http.StatusOK)
}

// ViewResults displays a saved case record
func (h *Handlers) ViewResults(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		h.renderError(c, http.StatusBadRequest, "Invalid result ID")
		return
	}

	record, err := h.repo.GetCaseRecord(c.Request.Context(), uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		h.renderError(c, http.StatusNotFound, "Result not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to load case record", "id", id, "error", err)
		h.renderError(c, http.StatusInternalServerError, apperr.MsgGeneric)
		return
	}

	results := render.Render(record.ToResult())
	c.HTML(http.StatusOK, "case.html", gin.H{
		"Title":   Title,
		"Record":  record,
		"Results": &results,
	})
}

// DownloadPDF proxies a case document. Demo links are answered with a
// notice instead.
func (h *Handlers) DownloadPDF(c *gin.Context) {
	docURL := c.Query("url")
	if docURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No URL provided"})
		return
	}

	if scraper.IsDemoURL(docURL) {
		c.JSON(http.StatusOK, gin.H{
			"message":  scraper.DemoMessage,
			"demo_url": docURL,
		})
		return
	}

	doc, err := h.downloader.Fetch(c.Request.Context(), docURL)
	if err != nil {
		h.logger.Error("Document download failed", "url", docURL, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Download failed: " + err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+scraper.DownloadName+`"`)
	c.Data(http.StatusOK, "application/pdf", doc.Body)
}

// origin is the scheme and host the request was made to.
func origin(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if fwd := c.GetHeader("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return scheme + "://" + c.Request.Host
}
