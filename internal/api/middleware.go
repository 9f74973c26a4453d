package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JustJay7/case-lookup/internal/database"
	"github.com/JustJay7/case-lookup/internal/session"
)

const sessionKey = "session"

// SessionMiddleware attaches the caller's session, creating one and setting
// the cookie on first contact. The client IP is carried on the request
// context for the query log.
func SessionMiddleware(m *session.Manager, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(session.CookieName)

		ctx := database.WithClientIP(c.Request.Context(), c.ClientIP())
		c.Request = c.Request.WithContext(ctx)

		s, created := m.Ensure(ctx, id)
		if created || s.ID != id {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(session.CookieName, s.ID, 0, "/", "", secure, true)
		}

		c.Set(sessionKey, s)
		c.Next()
	}
}

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}
