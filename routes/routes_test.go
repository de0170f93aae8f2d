package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"blogd/handlers"
	"blogd/middleware"
	"blogd/models"
	"blogd/services"
	"blogd/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	issuer *middleware.TokenIssuer
}

func newTestServer(t *testing.T) *testServer {
	st := store.NewMemoryStore()
	svc := services.New(st, services.BcryptHasher{Cost: bcrypt.MinCost})
	issuer := middleware.NewTokenIssuer("test-secret", time.Hour)
	reg := prometheus.NewRegistry()

	router := SetupRouter(handlers.NewHandler(svc, st, issuer, 5*time.Second), Options{
		Issuer:      issuer,
		Metrics:     middleware.NewMetrics(reg),
		Gatherer:    reg,
		CORSOrigins: []string{"*"},
	})
	return &testServer{t: t, router: router, issuer: issuer}
}

func (s *testServer) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (s *testServer) register(name, email string) (string, string) {
	w := s.do(http.MethodPost, "/register", gin.H{"name": name, "email": email, "password": "pw"})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	body := decode[map[string]string](s.t, w)
	return body["userId"], body["token"]
}

func (s *testServer) createPost(userID, title string) string {
	w := s.do(http.MethodPost, "/user/"+userID+"/create-post", gin.H{"title": title, "content": "body"})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[map[string]string](s.t, w)["postId"]
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)
	userID, token := s.register("Alice", "a@x.com")
	assert.NotEmpty(t, userID)
	assert.NotEmpty(t, token)

	w := s.do(http.MethodPost, "/register", gin.H{"name": "Alice", "email": "a@x.com", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User already exists", decode[map[string]string](t, w)["message"])

	w = s.do(http.MethodPost, "/register", gin.H{"email": "b@x.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/login", gin.H{"email": "a@x.com", "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]string](t, w)
	assert.Equal(t, userID, body["userId"])
	assert.Equal(t, "Login successful", body["message"])

	wrong := s.do(http.MethodPost, "/login", gin.H{"email": "a@x.com", "password": "nope"})
	unknown := s.do(http.MethodPost, "/login", gin.H{"email": "ghost@x.com", "password": "pw"})
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())

	w = s.do(http.MethodPost, "/login", gin.H{"email": "a@x.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMalformedBody(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserProfile(t *testing.T) {
	s := newTestServer(t)
	userID, token := s.register("Alice", "a@x.com")
	s.createPost(userID, "Hello World")

	w := s.do(http.MethodGet, "/user/"+userID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[models.UserView](t, w)
	assert.Equal(t, "Alice", view.Name)
	require.Len(t, view.Posts, 1)
	assert.NotContains(t, w.Body.String(), "password")

	w = s.do(http.MethodGet, "/user/not-an-id", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/me", nil, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, decode[models.UserView](t, w).ID)

	w = s.do(http.MethodGet, "/api/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPostLifecycle(t *testing.T) {
	s := newTestServer(t)
	aliceID, _ := s.register("Alice", "a@x.com")
	postID := s.createPost(aliceID, "Hello World")

	w := s.do(http.MethodGet, "/post/"+postID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	post := decode[models.Post](t, w)
	assert.Equal(t, "Alice", post.Author)
	assert.Equal(t, 0, post.Likes)
	assert.Empty(t, post.Comments)

	w = s.do(http.MethodPost, "/user/"+aliceID+"/create-post", gin.H{"title": "", "content": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, "/user/"+aliceID+"/update-post/"+postID, gin.H{"title": "Edited", "content": "new"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(http.MethodGet, "/api/post/"+postID, nil)
	assert.Equal(t, "Edited", decode[models.Post](t, w).Title)

	w = s.do(http.MethodDelete, "/user/"+aliceID+"/delete-post/"+postID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodGet, "/post/"+postID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Post not found", decode[map[string]string](t, w)["message"])

	w = s.do(http.MethodDelete, "/user/"+aliceID+"/delete-post/"+postID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListAndSearch(t *testing.T) {
	s := newTestServer(t)
	aliceID, _ := s.register("Alice", "a@x.com")
	s.createPost(aliceID, "Hello World")
	s.createPost(aliceID, "Another")

	w := s.do(http.MethodGet, "/posts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Post](t, w), 2)

	w = s.do(http.MethodGet, "/search?title=hello", nil)
	require.Equal(t, http.StatusOK, w.Code)
	hits := decode[[]models.Post](t, w)
	require.Len(t, hits, 1)
	assert.Equal(t, "Hello World", hits[0].Title)

	w = s.do(http.MethodGet, "/api/search?title=zzz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestEngagementRoutes(t *testing.T) {
	s := newTestServer(t)
	aliceID, _ := s.register("Alice", "a@x.com")
	postID := s.createPost(aliceID, "Hello World")

	w := s.do(http.MethodPost, "/post/"+postID+"/add-comment", gin.H{"userId": aliceID, "content": "nice!"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Comment models.Comment `json:"comment"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Alice", created.Comment.Commenter)

	w = s.do(http.MethodPost, "/post/"+postID+"/add-reply", gin.H{
		"userId": aliceID, "commentId": created.Comment.CommentID, "replyContent": "thanks",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/post/"+postID+"/add-reply", gin.H{
		"userId": aliceID, "commentId": "missing", "replyContent": "thanks",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/post/"+postID+"/toggle-like", gin.H{"userId": "u2"})
	require.Equal(t, http.StatusOK, w.Code)
	e := decode[models.Engagement](t, w)
	assert.Equal(t, 1, e.Likes)
	assert.Equal(t, []string{"u2"}, e.LikedBy)

	w = s.do(http.MethodPost, "/post/"+postID+"/toggle-dislike", gin.H{"userId": "u2"})
	require.Equal(t, http.StatusOK, w.Code)
	e = decode[models.Engagement](t, w)
	assert.Equal(t, 0, e.Likes)
	assert.Equal(t, 1, e.Dislikes)

	w = s.do(http.MethodPost, "/post/"+postID+"/toggle-like", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for i := 0; i < 2; i++ {
		w = s.do(http.MethodPost, "/post/"+postID+"/add-view", gin.H{"userId": "u2"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"views":1}`, w.Body.String())
	}

	w = s.do(http.MethodPost, "/post/missing/toggle-like", gin.H{"userId": "u2"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOperationalRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","store":"memory"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	s.do(http.MethodGet, "/posts", nil)
	w = s.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `blogd_http_requests_total{method="GET",route="/posts",status="200"} 1`)

	w = s.do(http.MethodGet, "/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Route not found"}`, w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/posts", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSConfig(t *testing.T) {
	cfg := corsConfig([]string{"http://a.test"})
	assert.False(t, cfg.AllowAllOrigins)
	assert.True(t, cfg.AllowCredentials)
	assert.Equal(t, []string{"http://a.test"}, cfg.AllowOrigins)

	assert.True(t, corsConfig(nil).AllowAllOrigins)
}
