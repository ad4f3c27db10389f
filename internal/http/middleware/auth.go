// README: Firebase auth middleware; verifies bearer tokens and exposes
// the caller's identity to handlers.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pronto/internal/infra"
)

const (
	ctxKeyUID  = "auth.uid"
	ctxKeyRole = "auth.role"
)

// Auth requires a valid Firebase ID token on every request.
func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := verify(c, verifier)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "sign-in required"})
			return
		}
		store(c, token)
		c.Next()
	}
}

// OptionalAuth populates the caller's identity when a valid token is
// present and lets anonymous requests through. Browsing and cart
// operations work signed out; submission checks identity itself.
func OptionalAuth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := verify(c, verifier); ok {
			store(c, token)
		}
		c.Next()
	}
}

func verify(c *gin.Context, verifier infra.TokenVerifier) (*infra.FirebaseToken, bool) {
	header := c.GetHeader("Authorization")
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || raw == "" {
		return nil, false
	}
	token, err := verifier.VerifyIDToken(c.Request.Context(), raw)
	if err != nil {
		return nil, false
	}
	return token, true
}

func store(c *gin.Context, token *infra.FirebaseToken) {
	c.Set(ctxKeyUID, token.UID)
	if role, ok := token.Claims["role"].(string); ok {
		c.Set(ctxKeyRole, role)
	}
}

// CallerUID returns the verified caller uid, or "" for anonymous requests.
func CallerUID(c *gin.Context) string {
	return c.GetString(ctxKeyUID)
}

// CallerRole returns the caller's role claim, or "" when absent.
func CallerRole(c *gin.Context) string {
	return c.GetString(ctxKeyRole)
}
