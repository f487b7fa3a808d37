// README: Auth middleware; resolves a Firebase ID token or session cookie to a caller.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"carebridge/internal/infra"
)

const (
	SessionCookie = "session"

	ctxCallerUID  = "caller_uid"
	ctxCallerRole = "caller_role"
)

var errUnauthorized = errors.New("unauthorized")

// Auth rejects the request with 401 unless it carries a valid bearer ID token
// or session cookie. The bearer header wins when both are present.
func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := verify(c, verifier)
		if err != nil || token == nil || token.UID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(ctxCallerUID, token.UID)
		if role, ok := token.Claims["role"].(string); ok {
			c.Set(ctxCallerRole, role)
		}
		c.Next()
	}
}

func verify(c *gin.Context, verifier infra.TokenVerifier) (*infra.FirebaseToken, error) {
	ctx := c.Request.Context()
	if header := c.GetHeader("Authorization"); header != "" {
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			return nil, errUnauthorized
		}
		return verifier.VerifyIDToken(ctx, strings.TrimSpace(raw))
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return verifier.VerifySessionCookie(ctx, cookie)
	}
	return nil, errUnauthorized
}

// CallerUID returns the authenticated uid, or "" outside Auth.
func CallerUID(c *gin.Context) string {
	return c.GetString(ctxCallerUID)
}

// CallerRole returns the role custom claim, or "" when the token has none.
func CallerRole(c *gin.Context) string {
	return c.GetString(ctxCallerRole)
}
