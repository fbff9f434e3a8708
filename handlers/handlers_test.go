package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"gramly/config"
	"gramly/handlers"
	"gramly/middleware"
	"gramly/routes"
)

const testSecret = "test-secret"

// testRouter builds the real router with no database attached. Every case in
// this file fails at the auth or validation boundary, before any collection
// is touched.
func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWTSecret:    testSecret,
		TokenTTL:     time.Hour,
		AllowOrigins: []string{"http://localhost:3000"},
	}
	h := handlers.New(nil, nil, cfg)
	return routes.SetupRouter(h, cfg)
}

func sessionToken(t *testing.T) string {
	t.Helper()
	token, err := middleware.NewToken(primitive.NewObjectID().Hex(), testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMutatingEndpointsRequireSession(t *testing.T) {
	r := testRouter(t)

	cases := []struct {
		method, path, body string
	}{
		{"POST", "/api/posts/like", `{"postId":"6543210fedcba9876543210f"}`},
		{"POST", "/api/posts/follow", `{"userId":"6543210fedcba9876543210f"}`},
		{"POST", "/api/posts/comment", `{"postId":"6543210fedcba9876543210f","text":"hi"}`},
		{"POST", "/api/posts/create", `{"caption":"c","mediaBase64":"data:image/png;base64,xx"}`},
		{"POST", "/api/posts/userposts", `{"userId":"6543210fedcba9876543210f"}`},
		{"GET", "/api/auth/currentuser", ""},
	}
	for _, tc := range cases {
		w := doJSON(t, r, tc.method, tc.path, tc.body, "")
		require.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	r := testRouter(t)

	cases := []string{
		`{}`,
		`{"email":"a@x.com"}`,
		`{"password":"Secret123!"}`,
		`{"email":"not-an-email","password":"Secret123!"}`,
		`{"email":"a@x.com","password":"short"}`,
	}
	for _, body := range cases {
		w := doJSON(t, r, "POST", "/api/auth/register", body, "")
		require.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
	}
}

func TestLoginRejectsMissingFields(t *testing.T) {
	r := testRouter(t)

	w := doJSON(t, r, "POST", "/api/auth/login", `{"email":"a@x.com"}`, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLikeRejectsInvalidPostID(t *testing.T) {
	r := testRouter(t)

	w := doJSON(t, r, "POST", "/api/posts/like", `{"postId":"not-hex"}`, sessionToken(t))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLikeRejectsMissingPostID(t *testing.T) {
	r := testRouter(t)

	w := doJSON(t, r, "POST", "/api/posts/like", `{}`, sessionToken(t))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFollowRejectsInvalidUserID(t *testing.T) {
	r := testRouter(t)

	w := doJSON(t, r, "POST", "/api/posts/follow", `{"userId":"nope"}`, sessionToken(t))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFollowRejectsSelfFollow(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWTSecret:    testSecret,
		TokenTTL:     time.Hour,
		AllowOrigins: []string{"http://localhost:3000"},
	}
	h := handlers.New(nil, nil, cfg)
	r := routes.SetupRouter(h, cfg)

	selfID := primitive.NewObjectID()
	token, err := middleware.NewToken(selfID.Hex(), testSecret, time.Hour)
	require.NoError(t, err)

	w := doJSON(t, r, "POST", "/api/posts/follow", `{"userId":"`+selfID.Hex()+`"}`, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Cannot follow yourself")
}

func TestCommentRejectsEmptyText(t *testing.T) {
	r := testRouter(t)
	token := sessionToken(t)

	// Binding rejects an absent text field.
	w := doJSON(t, r, "POST", "/api/posts/comment", `{"postId":"6543210fedcba9876543210f"}`, token)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Whitespace-only text survives binding but must fail the trim check.
	w = doJSON(t, r, "POST", "/api/posts/comment", `{"postId":"6543210fedcba9876543210f","text":"   "}`, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "empty")
}

func TestCreatePostRejectsMissingFields(t *testing.T) {
	r := testRouter(t)
	token := sessionToken(t)

	for _, body := range []string{`{}`, `{"caption":"c"}`, `{"mediaBase64":"xx"}`} {
		w := doJSON(t, r, "POST", "/api/posts/create", body, token)
		require.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
	}
}

func TestUserPostsRejectsInvalidUserID(t *testing.T) {
	r := testRouter(t)

	w := doJSON(t, r, "POST", "/api/posts/userposts", `{"userId":"not-hex"}`, sessionToken(t))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnknownAPIRouteReturnsJSON404(t *testing.T) {
	r := testRouter(t)

	w := doJSON(t, r, "GET", "/api/nope", "", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "Endpoint not found")
}

func TestHealthEndpoint(t *testing.T) {
	r := testRouter(t)

	w := doJSON(t, r, "GET", "/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)
}
