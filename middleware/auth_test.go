package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func authRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuth(secret))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": c.GetString("userId")})
	})
	return r
}

func TestJWTAuthValidToken(t *testing.T) {
	token, err := NewToken("abc123", testSecret, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	authRouter(testSecret).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "abc123")
}

func TestJWTAuthMissingHeader(t *testing.T) {
	req := httptest.NewRequest("GET", "/whoami", nil)
	w := httptest.NewRecorder()
	authRouter(testSecret).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMalformedHeader(t *testing.T) {
	for _, header := range []string{"garbage", "Bearer", "Basic abc", "Bearer not.a.token"} {
		req := httptest.NewRequest("GET", "/whoami", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		authRouter(testSecret).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestJWTAuthExpiredToken(t *testing.T) {
	token, err := NewToken("abc123", testSecret, -time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	authRouter(testSecret).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthWrongSecret(t *testing.T) {
	token, err := NewToken("abc123", "other-secret", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	authRouter(testSecret).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
