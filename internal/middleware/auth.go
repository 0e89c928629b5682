package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pollstream/pollstream-api/internal/auth"
	"github.com/pollstream/pollstream-api/internal/logger"
	"github.com/pollstream/pollstream-api/internal/response"
)

const (
	ctxKeyUserID  = "auth_user_id"
	ctxKeyEmail   = "auth_email"
	ctxKeyIsAdmin = "auth_is_admin"
)

// Authenticate verifies the Bearer token and stores the verified identity
// on the request context. Requests without a valid token are rejected.
func Authenticate(tokens *auth.Manager) gin.HandlerFunc {
	authLog := logger.Auth()
	return func(c *gin.Context) {
		claims, ok := parseBearer(c, tokens)
		if !ok {
			authLog.Debug("rejected request without valid token",
				"method", c.Request.Method, "path", c.Request.URL.Path)
			response.UnauthorizedError(c, "could not validate credentials")
			c.Abort()
			return
		}
		setIdentity(c, claims)
		c.Next()
	}
}

// MaybeAuthenticate resolves the identity when a valid token is present but
// lets anonymous requests through. Used by listing endpoints that enrich
// results for signed-in callers.
func MaybeAuthenticate(tokens *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := parseBearer(c, tokens); ok {
			setIdentity(c, claims)
		}
		c.Next()
	}
}

func parseBearer(c *gin.Context, tokens *auth.Manager) (*auth.Claims, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, false
	}

	claims, err := tokens.Parse(parts[1])
	if err != nil {
		return nil, false
	}
	return claims, true
}

func setIdentity(c *gin.Context, claims *auth.Claims) {
	c.Set(ctxKeyUserID, claims.UserID)
	c.Set(ctxKeyEmail, claims.Email)
	c.Set(ctxKeyIsAdmin, claims.IsAdmin)
}

// UserID returns the authenticated user's id, if any.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	raw, ok := c.Get(ctxKeyUserID)
	if !ok {
		return uuid.Nil, false
	}
	s, ok := raw.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// IsAdmin reports whether the authenticated user is an admin.
func IsAdmin(c *gin.Context) bool {
	raw, ok := c.Get(ctxKeyIsAdmin)
	if !ok {
		return false
	}
	isAdmin, _ := raw.(bool)
	return isAdmin
}
