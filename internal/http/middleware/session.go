// README: Session middleware; carts and checkouts key off a device
// session that survives sign-in.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionCookie = "pronto_session"
	ctxKeySession = "session.id"

	// Matches the cart TTL so an idle session and its cart expire together.
	sessionMaxAge = 48 * 60 * 60
)

// Session assigns every caller a stable session id, preferring an
// explicit header (native clients) over the cookie (browsers).
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := c.GetHeader("X-Session-ID")
		if sid == "" {
			sid, _ = c.Cookie(sessionCookie)
		}
		if sid == "" {
			sid = uuid.NewString()
			c.SetCookie(sessionCookie, sid, sessionMaxAge, "/", "", false, true)
		}
		c.Set(ctxKeySession, sid)
		c.Next()
	}
}

// SessionID returns the caller's session id.
func SessionID(c *gin.Context) string {
	return c.GetString(ctxKeySession)
}
