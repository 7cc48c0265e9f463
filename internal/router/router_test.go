package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"letsconnect/internal/cache"
	"letsconnect/internal/config"
	"letsconnect/internal/engagement"
	"letsconnect/internal/events"
	"letsconnect/internal/media"
	"letsconnect/internal/middleware"
	"letsconnect/internal/repositories"
	"letsconnect/internal/response"
	"letsconnect/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	handler http.Handler
	repos   *repositories.Collection
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Environment:    "test",
			MaxUploadBytes: 1 << 20,
			CORSOrigins:    []string{"*"},
		},
		Mongo: config.MongoConfig{Provider: "memory", ConflictRetries: 3},
		Auth: config.AuthConfig{
			AccessSecret:  "test-access-secret-0123456789abcdef",
			RefreshSecret: "test-refresh-secret-0123456789abcdef",
			AccessExpiry:  time.Minute,
			RefreshExpiry: time.Hour,
			BCryptCost:    bcrypt.MinCost,
			Issuer:        "letsconnect-test",
			PrincipalTTL:  time.Minute,
		},
		Cloudinary: config.CloudinaryConfig{
			MaxFileSize:  1 << 20,
			AllowedTypes: []string{"image/png"},
		},
		RateLimit: config.RateLimitConfig{Enabled: true, Requests: 1000, Window: time.Minute},
		Pagination: config.PaginationConfig{
			DefaultLimit:      10,
			MaxLimit:          50,
			CommentsPerPage:   20,
			AttendancePerPage: 20,
		},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()

	logger := zap.NewNop()
	repos := repositories.NewMemoryCollection(logger)
	bus := events.NewEventBus(&events.EventBusConfig{BufferSize: 16}, logger)
	c := cache.NewMemoryCache(&cache.Config{Provider: "memory", TTL: time.Minute}, logger)

	sc, err := services.NewServiceCollection(repos, c, bus, media.NewMemoryStore(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = sc.Shutdown(ctx)
	})

	builder := response.NewBuilder(nil, logger)
	limiter := middleware.NewRateLimiter(c, cfg.RateLimit, builder, logger)
	return &testServer{
		handler: SetupRouter(sc, limiter, builder, logger),
		repos:   repos,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body io.Reader, contentType string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	}
	return rec, decoded
}

func (s *testServer) doJSON(t *testing.T, method, path, token string, payload interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	return s.do(t, method, path, token, body, "application/json")
}

// signUp registers username, optionally promotes it, and returns an access token.
func (s *testServer) signUp(t *testing.T, username, role string) (string, string) {
	t.Helper()

	rec, body := s.doJSON(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":     "Test " + username,
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
		"gender":   "other",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	userID := body["data"].(map[string]interface{})["_id"].(string)

	if role != "" {
		require.NoError(t, s.repos.User.SetRole(context.Background(), userID, role))
	}

	rec, body = s.doJSON(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return body["data"].(map[string]interface{})["accessToken"].(string), userID
}

func multipartBody(t *testing.T, fields map[string]string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

// ===============================
// INFRASTRUCTURE ROUTES
// ===============================

func TestHealth(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec, body := s.do(t, http.MethodGet, "/health", "", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "1000", rec.Header().Get("X-RateLimit-Limit"))
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec, body := s.do(t, http.MethodGet, "/api/v2/nothing", "", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestAPIRequiresToken(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec, body := s.do(t, http.MethodGet, "/api/v1/posts", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication Required", body["message"])

	rec, _ = s.do(t, http.MethodGet, "/api/v1/posts", "not-a-jwt", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRateLimitExceeded(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Requests = 2
	s := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		rec, _ := s.do(t, http.MethodGet, "/health", "", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec, body := s.do(t, http.MethodGet, "/health", "", nil, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too Many Requests, Please Try Again Later", body["message"])
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

// ===============================
// AUTH
// ===============================

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec, body := s.doJSON(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "x",
		"email":    "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])

	rec, _ = s.do(t, http.MethodPost, "/api/v1/auth/register", "", strings.NewReader("{broken"), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ===============================
// ENGAGEMENT OVER HTTP
// ===============================

func TestPostEngagementFlow(t *testing.T) {
	s := newTestServer(t, testConfig())
	owner, _ := s.signUp(t, "author", "")
	reader, _ := s.signUp(t, "reader", "")

	form, contentType := multipartBody(t, map[string]string{
		"content":   "hello from the api",
		"mediaType": "text",
	})
	rec, body := s.do(t, http.MethodPost, "/api/v1/posts", owner, form, contentType)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Post Created Successfully", body["message"])
	postID := body["data"].(map[string]interface{})["_id"].(string)
	base := "/api/v1/posts/" + postID

	rec, body = s.doJSON(t, http.MethodPut, base+"/like", reader, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Post Liked Successfully", body["message"])

	rec, body = s.doJSON(t, http.MethodPost, base+"/comments", reader, map[string]string{"content": "nice"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Comment Added Successfully", body["message"])

	rec, body = s.doJSON(t, http.MethodPost, base+"/comments", reader, map[string]string{"content": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = s.do(t, http.MethodGet, base+"/comments?page=1", reader, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["totalComments"])
	assert.Equal(t, float64(1), body["totalPages"])
	require.Len(t, body["comments"], 1)

	rec, _ = s.do(t, http.MethodGet, base+"/comments?page=0", reader, nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = s.do(t, http.MethodGet, base, reader, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["likesCount"])
	assert.Equal(t, float64(1), data["commentsCount"])

	rec, _ = s.doJSON(t, http.MethodPut, base+"/allow-comments", reader, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.doJSON(t, http.MethodDelete, base, reader, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, body = s.doJSON(t, http.MethodDelete, base, owner, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, _ = s.do(t, http.MethodGet, base, reader, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ===============================
// ADMIN
// ===============================

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t, testConfig())
	user, userID := s.signUp(t, "member", "")
	admin, _ := s.signUp(t, "boss", engagement.RoleAdmin)

	rec, _ := s.do(t, http.MethodGet, "/api/v1/admin/stats", user, nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, body := s.do(t, http.MethodGet, "/api/v1/admin/stats", admin, nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["success"])
	assert.NotNil(t, body["data"])

	rec, _ = s.doJSON(t, http.MethodPut, "/api/v1/admin/users/"+userID+"/ban", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, body = s.do(t, http.MethodGet, "/api/v1/posts", user, nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Your Account Has Been Banned", body["message"])
}
