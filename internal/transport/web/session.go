package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionCookieName = "chat_session"
	sessionKey        = "session_id"
	defaultMaxAge     = 7 * 24 * time.Hour
)

// sessionCookie makes sure every API request carries a session id, issuing a
// fresh uuid when the cookie is missing or malformed. The cookie lives as
// long as an idle server-side session does.
func sessionCookie(idleTTL time.Duration) gin.HandlerFunc {
	if idleTTL <= 0 {
		idleTTL = defaultMaxAge
	}
	maxAge := int(idleTTL / time.Second)
	return func(c *gin.Context) {
		id, err := c.Cookie(sessionCookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(sessionCookieName, id, maxAge, "/", "", false, true)
		}
		c.Set(sessionKey, id)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}
