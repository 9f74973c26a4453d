package api

import (
	"github.com/gin-gonic/gin"

	"github.com/JustJay7/case-lookup/internal/render"
)

// SetupRoutes configures all application routes
func SetupRoutes(router *gin.Engine, d Deps) error {
	h := NewHandlers(d)

	tmpl, err := render.Templates()
	if err != nil {
		return err
	}
	router.SetHTMLTemplate(tmpl)

	router.GET("/download_pdf", h.DownloadPDF)

	pages := router.Group("/", SessionMiddleware(d.Sessions, d.Config.SecureCookies))
	{
		pages.GET("/", h.HomePage)
		pages.POST("/search", h.SearchCase)
		pages.POST("/clear", h.ClearForm)
		pages.POST("/history/:index/select", h.SelectRecent)
		pages.POST("/theme/toggle", h.ToggleTheme)
		pages.POST("/modals/:id/show", h.ShowModal)
		pages.POST("/modals/:id/close", h.CloseModal)
		pages.POST("/modals/:id/share/:method", h.ShareVia)
		pages.POST("/events", h.EventAPI)
		pages.GET("/share", h.SharedCase)
		pages.GET("/results/:id", h.ViewResults)
	}

	api := router.Group("/api")
	{
		api.GET("/health", h.HealthCheck)
		api.GET("/sanitize", h.SanitizeAPI)

		// Case records
		api.GET("/cases", h.ListCasesAPI)
		api.POST("/cases/bulk", h.BulkSearchAPI)

		api.GET("/cache/stats", h.CacheStats)

		// CAPTCHA endpoints
		api.GET("/captcha", h.PendingCaptchas)
		api.GET("/captcha/:id", h.GetCaptcha)
		api.POST("/captcha/:id/solve", h.SolveCaptcha)

		sess := api.Group("", SessionMiddleware(d.Sessions, d.Config.SecureCookies))
		sess.POST("/search", h.SearchAPI)
		sess.GET("/state", h.StateAPI)
		sess.GET("/history", h.HistoryAPI)
		sess.DELETE("/history", h.ClearHistoryAPI)
	}

	return nil
}
