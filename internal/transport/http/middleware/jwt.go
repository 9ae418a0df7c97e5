package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"zipfit/internal/pkg/jwtutil"
	"zipfit/internal/transport/http/response"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
	ContextRoleKey     = "role"
)

// AuthJWT requires an "Authorization: Bearer <token>" header and stores the
// operator claims on the context.
func AuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "missing bearer token")
			return
		}

		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid or expired token")
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUsernameKey, claims.Username)
		c.Set(ContextRoleKey, claims.Role)
		c.Next()
	}
}

// RequireRole must be chained after AuthJWT.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !slices.Contains(roles, c.GetString(ContextRoleKey)) {
			abort(c, http.StatusForbidden, response.CodeForbidden, "operator role not allowed")
			return
		}
		c.Next()
	}
}

// CurrentUserID returns the operator id stored by AuthJWT.
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(ContextUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abort(c *gin.Context, status, code int, message string) {
	response.Error(c, status, code, message)
	c.Abort()
}
