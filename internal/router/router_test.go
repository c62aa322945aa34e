package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/anonto42/nano-social/backend/internal/blobstore"
	"github.com/anonto42/nano-social/backend/internal/middleware"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/observability"
	"github.com/anonto42/nano-social/backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// idTokens accepts "id:<uid>" as an identity provider token for uid.
type idTokens struct{}

func (idTokens) Verify(_ context.Context, token string) (string, error) {
	if uid, ok := strings.CutPrefix(token, "id:"); ok && uid != "" {
		return uid, nil
	}
	return "", middleware.ErrInvalidToken
}

type server struct {
	e        *echo.Echo
	db       *gorm.DB
	store    *blobstore.Memory
	sessions *middleware.SessionTokens
}

func newServer(t *testing.T) *server {
	t.Helper()
	db := testutil.NewDB(t)
	store := blobstore.NewMemory("https://blob.test/media")
	sessions := middleware.NewSessionTokens("test-secret")
	reg := prometheus.NewRegistry()

	e := echo.New()
	SetupMiddleware(e)
	SetupRoutes(e, Dependencies{
		DB:              db,
		Store:           store,
		Metrics:         observability.NewMetrics(reg),
		Gatherer:        reg,
		Verifiers:       []middleware.TokenVerifier{sessions, idTokens{}},
		IDTokens:        idTokens{},
		Sessions:        sessions,
		UploadRateLimit: 100,
	})
	return &server{e: e, db: db, store: store, sessions: sessions}
}

func (s *server) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *server) session(t *testing.T, uid string) string {
	t.Helper()
	token, _, err := s.sessions.Issue(uid)
	require.NoError(t, err)
	return token
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func TestHealthAndMetrics(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)

	s.do(t, http.MethodGet, "/api/v1/feed/global", "", nil)
	rec = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "nano_social_feed_query_duration_seconds")
}

func TestAuthentication(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/feed/global", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/feed/following", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/feed/global", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/feed/global", nil)
	req.Header.Set(echo.HeaderAuthorization, "Token abc")
	rec = httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Identity without a profile.
	rec = s.do(t, http.MethodGet, "/api/v1/feed/following", "id:uid-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionExchange(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/auth/session", "", map[string]string{"idToken": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/session", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/session", "", map[string]string{"idToken": "id:uid-1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var session struct {
		Token string `json:"token"`
	}
	decode(t, rec, &session)
	require.NotEmpty(t, session.Token)

	rec = s.do(t, http.MethodGet, "/api/v1/profile/exists", session.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var exists struct {
		Exists bool `json:"exists"`
	}
	decode(t, rec, &exists)
	assert.False(t, exists.Exists)
}

func TestPostFlow(t *testing.T) {
	s := newServer(t)
	alice := s.session(t, "uid-alice")
	bob := s.session(t, "uid-bob")

	for token, name := range map[string]string{alice: "alice", bob: "bob"} {
		rec := s.do(t, http.MethodPost, "/api/v1/profile", token, map[string]string{"username": name, "name": name})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := s.do(t, http.MethodPost, "/api/v1/profile", alice, map[string]string{"username": "bad name", "name": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/posts", alice, map[string]string{"content": "hello"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var post models.Post
	env := decode(t, rec, &post)
	assert.True(t, env.Success)
	require.NotEmpty(t, post.ID)

	rec = s.do(t, http.MethodPost, "/api/v1/posts", alice, map[string]string{"content": strings.Repeat("x", 201)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/posts/"+post.ID+"/like", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var like struct {
		Liked      bool  `json:"liked"`
		LikesCount int64 `json:"likes_count"`
	}
	decode(t, rec, &like)
	assert.True(t, like.Liked)
	assert.Equal(t, int64(1), like.LikesCount)

	rec = s.do(t, http.MethodGet, "/api/v1/feed/global", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Posts []struct {
			ID      string `json:"id"`
			IsLiked bool   `json:"is_liked"`
		} `json:"posts"`
	}
	decode(t, rec, &page)
	require.Len(t, page.Posts, 1)
	assert.True(t, page.Posts[0].IsLiked)

	rec = s.do(t, http.MethodGet, "/api/v1/notifications/unread-count", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)

	rec = s.do(t, http.MethodDelete, "/api/v1/posts/"+post.ID, bob, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/posts/"+post.ID, alice, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/posts/"+post.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Post not found")
}

func TestUpload(t *testing.T) {
	s := newServer(t)
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

	upload := func(token, contentType string) *httptest.ResponseRecorder {
		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="a.png"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(png)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads?kind=avatar", &body)
		req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
		if token != "" {
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		s.e.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, upload("", "image/png").Code)
	assert.Equal(t, http.StatusBadRequest, upload(s.session(t, "uid-1"), "text/plain").Code)

	rec := upload(s.session(t, "uid-1"), "image/png")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out struct {
		URL string `json:"url"`
	}
	decode(t, rec, &out)
	assert.True(t, strings.HasPrefix(out.URL, "https://blob.test/media/avatar/uid-1-"), out.URL)
	assert.Len(t, s.store.Keys(), 1)

	// The in-process store serves what it handed out.
	path := strings.TrimPrefix(out.URL, "https://blob.test")
	rec = s.do(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, png, rec.Body.Bytes())

	rec = s.do(t, http.MethodGet, "/media/avatar/missing.png", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	s := newServer(t)
	rec := s.do(t, http.MethodGet, "/api/v1/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
