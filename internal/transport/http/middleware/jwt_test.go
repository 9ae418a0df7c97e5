package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zipfit/internal/pkg/jwtutil"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer  abc ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"Bearer   ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		token, ok := bearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.token, token, tt.header)
	}
}

func TestAuthJWTAndRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.DELETE("/chunks", AuthJWT("secret"), RequireRole("admin"), func(c *gin.Context) {
		id, ok := CurrentUserID(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	call := func(role string) int {
		req := httptest.NewRequest(http.MethodDelete, "/chunks", nil)
		if role != "" {
			token, err := jwtutil.GenerateToken("secret", time.Hour, 7, "kim", role)
			require.NoError(t, err)
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, call(""))
	assert.Equal(t, http.StatusForbidden, call("editor"))
	assert.Equal(t, http.StatusOK, call("admin"))
}
