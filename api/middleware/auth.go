package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mdiagne/terangabus/internal/service/auth"
)

const (
	ctxUserID = "auth_user_id"
	ctxEmail  = "auth_email"
)

// RequireAuth parses the Bearer token and stores the caller's identity
// on the gin context. Requests without a valid token get a 401.
func RequireAuth(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c.Request)
		if token == "" {
			abortUnauthorized(c)
			return
		}
		claims, err := issuer.Parse(token)
		if err != nil {
			abortUnauthorized(c)
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			abortUnauthorized(c)
			return
		}
		SetAuthContext(c, userID, claims.Email)
		c.Next()
	}
}

// SetAuthContext records the caller identity on the context. Exposed
// for handler tests.
func SetAuthContext(c *gin.Context, userID int64, email string) {
	c.Set(ctxUserID, userID)
	c.Set(ctxEmail, email)
}

// AuthUserID returns the authenticated user's id, or false when the
// request went through without RequireAuth.
func AuthUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

func AuthEmail(c *gin.Context) string {
	if v, ok := c.Get(ctxEmail); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentification requise"})
}

func extractBearerToken(r *http.Request) string {
	authorization := r.Header.Get("Authorization")
	parts := strings.SplitN(authorization, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
