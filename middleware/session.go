package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionCookie = "calendar_session"
	sessionKey    = "session_id"

	// one year; the cookie only names the session, state expires server-side
	sessionCookieMaxAge = 365 * 24 * 60 * 60
)

// SessionMiddleware makes sure every request carries a calendar session id,
// issuing a new cookie when the browser has none or a malformed one.
func SessionMiddleware(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(SessionCookie)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, id, sessionCookieMaxAge, "/", "", secure, true)
		}
		c.Set(sessionKey, id)
		c.Next()
	}
}

// GetSessionID returns the session id set by SessionMiddleware.
func GetSessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}
