package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/JustJay7/case-lookup/internal/apperr"
	"github.com/JustJay7/case-lookup/internal/form"
	"github.com/JustJay7/case-lookup/internal/lookup"
	"github.com/JustJay7/case-lookup/internal/scraper"
	"github.com/JustJay7/case-lookup/internal/ui"
)

type caseInfo struct {
	Type        string `json:"type"`
	Number      string `json:"number"`
	Year        string `json:"year"`
	Parties     string `json:"parties"`
	FilingDate  string `json:"filing_date"`
	NextHearing string `json:"next_hearing"`
	Status      string `json:"status"`
}

type documentsInfo struct {
	Available bool              `json:"available"`
	Links     []lookup.Document `json:"links"`
}

type metrics struct {
	SearchDuration float64 `json:"search_duration"`
	Timestamp      string  `json:"timestamp"`
	FromCache      bool    `json:"from_cache"`
}

type searchResponse struct {
	Success  bool                   `json:"success"`
	QueryID  string                 `json:"query_id"`
	RecordID uint                   `json:"record_id,omitempty"`
	CaseInfo caseInfo               `json:"case_info"`
	Docs     documentsInfo          `json:"documents"`
	Timeline []lookup.TimelineEvent `json:"timeline"`
	Metrics  metrics                `json:"metrics"`
}

func (h *Handlers) envelope(out ui.Outcome) searchResponse {
	q, res := out.Query, out.Result

	queryID := uuid.NewString()
	if out.QueryID != 0 {
		queryID = strconv.FormatUint(uint64(out.QueryID), 10)
	}

	links := res.PDFLinks
	if links == nil {
		links = []lookup.Document{}
	}
	timeline := res.Timeline
	if timeline == nil {
		timeline = []lookup.TimelineEvent{}
	}

	return searchResponse{
		Success:  true,
		QueryID:  queryID,
		RecordID: out.RecordID,
		CaseInfo: caseInfo{
			Type:        q.CaseType,
			Number:      q.CaseNumber,
			Year:        strconv.Itoa(q.FilingYear),
			Parties:     res.PartiesNames,
			FilingDate:  res.FilingDate,
			NextHearing: res.NextHearingDate,
			Status:      res.CaseStatus,
		},
		Docs:     documentsInfo{Available: len(links) > 0, Links: links},
		Timeline: timeline,
		Metrics: metrics{
			SearchDuration: res.SearchDuration,
			Timestamp:      h.now().UTC().Format(time.RFC3339),
			FromCache:      res.FromCache,
		},
	}
}

func apiError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{
		"success": false,
		"error":   apperr.UserMessage(err),
	})
}

// SearchAPI runs a search for the session, like the form does, and answers
// with the result envelope.
func (h *Handlers) SearchAPI(c *gin.Context) {
	var fields form.Fields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}

	out, err := currentSession(c).Controller.Submit(c.Request.Context(), fields)
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.envelope(out))
}

// StateAPI returns the page state of the session
func (h *Handlers) StateAPI(c *gin.Context) {
	s := currentSession(c)
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": s.ID,
		"state":      s.Controller.State(),
		"searching":  s.Controller.Searching(),
		"page":       s.Page.Snapshot(),
	})
}

// EventAPI dispatches a page event to the session's handlers
func (h *Handlers) EventAPI(c *gin.Context) {
	var ev ui.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid event: " + err.Error(),
		})
		return
	}
	ev.Origin = origin(c)

	s := currentSession(c)
	result, err := s.Events.Dispatch(c.Request.Context(), ev)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{
			"success": false,
			"error":   apperr.UserMessage(err),
			"page":    s.Page.Snapshot(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  result,
		"page":    s.Page.Snapshot(),
	})
}

// HistoryAPI lists the recent searches of the session
func (h *Handlers) HistoryAPI(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    currentSession(c).Controller.Recent(c.Request.Context()),
	})
}

// ClearHistoryAPI removes the recent searches of the session
func (h *Handlers) ClearHistoryAPI(c *gin.Context) {
	if err := currentSession(c).Controller.ClearHistory(c.Request.Context()); err != nil {
		h.logger.Error("Failed to clear history", "error", err)
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SanitizeAPI applies as-you-type sanitization to a case number
func (h *Handlers) SanitizeAPI(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"value":   form.SanitizeCaseNumber(c.Query("case_number")),
	})
}

// ListCasesAPI returns saved case records, newest first
func (h *Handlers) ListCasesAPI(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	records, total, err := h.repo.ListCaseRecords(c.Request.Context(), page, limit)
	if err != nil {
		h.logger.Error("Failed to list case records", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   apperr.MsgGeneric,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    records,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

type bulkRequest struct {
	Queries []form.Fields `json:"queries" binding:"required,min=1,max=10"`
}

// BulkSearchAPI looks up several cases concurrently. It bypasses the session
// controller and its single-flight guard; results are reported per query.
func (h *Handlers) BulkSearchAPI(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	items := make([]gin.H, len(req.Queries))
	var queries []lookup.Query
	var slots []int
	for i, f := range req.Queries {
		f.CaseNumber = form.SanitizeCaseNumber(f.CaseNumber)
		q, err := h.builder.Build(f)
		if err != nil {
			items[i] = gin.H{"query": f, "success": false, "error": apperr.UserMessage(err)}
			continue
		}
		queries = append(queries, q)
		slots = append(slots, i)
	}

	results := lookup.SearchMany(c.Request.Context(), h.client, queries, h.cfg.MaxConcurrentScrapes)
	for j, r := range results {
		item := gin.H{"query": r.Query}
		if r.Err != nil {
			item["success"] = false
			item["error"] = apperr.UserMessage(r.Err)
		} else {
			item["success"] = true
			item["data"] = r.Result
		}
		items[slots[j]] = item
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"results": items,
	})
}

// CacheStats returns cache statistics
func (h *Handlers) CacheStats(c *gin.Context) {
	if h.cache == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "enabled": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"enabled": true,
		"stats":   h.cache.Stats(),
	})
}

// HealthCheck returns the health status
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"mode":     h.cfg.LookupMode,
		"database": h.repo.Ping(c.Request.Context()),
		"sessions": h.sessions.Count(),
		"time":     h.now().Unix(),
	})
}

// PendingCaptchas lists the CAPTCHAs waiting for a person
func (h *Handlers) PendingCaptchas(c *gin.Context) {
	if h.captcha == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": []string{}})
		return
	}
	ids, err := h.captcha.Pending()
	if err != nil {
		h.logger.Error("Failed to list captchas", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to list CAPTCHAs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": ids})
}

// GetCaptcha returns CAPTCHA image for manual solving
func (h *Handlers) GetCaptcha(c *gin.Context) {
	if h.captcha == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "CAPTCHA not found"})
		return
	}
	data, err := h.captcha.Image(c.Param("id"))
	if err != nil {
		if !errors.Is(err, scraper.ErrCaptchaNotFound) {
			h.logger.Error("Failed to read captcha", "id", c.Param("id"), "error", err)
		}
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "CAPTCHA not found"})
		return
	}
	c.Data(http.StatusOK, "image/png", data)
}

// SolveCaptcha accepts manual CAPTCHA solution
func (h *Handlers) SolveCaptcha(c *gin.Context) {
	var req struct {
		Solution string `json:"solution" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request"})
		return
	}

	if h.captcha == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "CAPTCHA not found"})
		return
	}
	err := h.captcha.SubmitSolution(c.Param("id"), req.Solution)
	if errors.Is(err, scraper.ErrCaptchaNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "CAPTCHA not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to save captcha solution", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to save solution"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "CAPTCHA solution saved",
	})
}
