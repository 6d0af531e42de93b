package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accounthub/config"
	"accounthub/internal/application"
	"accounthub/internal/domain/entity"
	"accounthub/internal/domain/repository"
	"accounthub/internal/forms"
	handlers "accounthub/internal/interface/http"
	"accounthub/internal/interface/middleware"
	"accounthub/internal/session"
	"accounthub/pkg/helpers"
	"accounthub/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

const validToken = "valid-access-token"

// fakeGate resolves one hard-coded token so handler tests run without Redis.
type fakeGate struct {
	identity     *session.Identity
	startedFor   string
	startedLang  string
	destroyedFor string
	langSetFor   string
	langSetCode  string
	startErr     error
}

func (g *fakeGate) Start(ctx context.Context, u *entity.User, language string) (session.TokenPair, error) {
	if g.startErr != nil {
		return session.TokenPair{}, g.startErr
	}
	g.startedFor = u.ID
	g.startedLang = language
	return session.TokenPair{
		AccessToken:        validToken,
		AccessTokenExpiry:  time.Now().Add(time.Hour),
		RefreshToken:       "refresh",
		RefreshTokenExpiry: time.Now().Add(24 * time.Hour),
	}, nil
}

func (g *fakeGate) Resolve(ctx context.Context, accessToken string) (*session.Identity, error) {
	if accessToken == validToken && g.identity != nil {
		return g.identity, nil
	}
	return nil, session.ErrNoSession
}

func (g *fakeGate) Destroy(ctx context.Context, userID string) error {
	g.destroyedFor = userID
	return nil
}

func (g *fakeGate) SetLanguage(ctx context.Context, userID, code string) error {
	g.langSetFor = userID
	g.langSetCode = code
	return nil
}

type mockUserRepo struct {
	createFn        func(ctx context.Context, u *entity.User) error
	getByIDFn       func(ctx context.Context, id string) (*entity.User, error)
	getByUsernameFn func(ctx context.Context, username string) (*entity.User, error)
	updateFn        func(ctx context.Context, u *entity.User) error
}

func (m *mockUserRepo) Create(ctx context.Context, u *entity.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, u)
	}
	u.ID = "user-1"
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) Update(ctx context.Context, u *entity.User) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, u)
	}
	return nil
}

type mockDocRepo struct {
	createFn      func(ctx context.Context, d *entity.Document) error
	listByOwnerFn func(ctx context.Context, ownerID string) ([]entity.Document, error)
}

func (m *mockDocRepo) Create(ctx context.Context, d *entity.Document) error {
	if m.createFn != nil {
		return m.createFn(ctx, d)
	}
	d.ID = "doc-1"
	return nil
}

func (m *mockDocRepo) ListByOwner(ctx context.Context, ownerID string) ([]entity.Document, error) {
	if m.listByOwnerFn != nil {
		return m.listByOwnerFn(ctx, ownerID)
	}
	return []entity.Document{}, nil
}

type fakeBlobStore struct {
	lastPath string
	puts     int
}

func (f *fakeBlobStore) Put(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	_, _ = io.Copy(io.Discard, r)
	f.lastPath = objectPath
	f.puts++
	return "https://storage.example.com/" + objectPath, nil
}

type env struct {
	router *gin.Engine
	gate   *fakeGate
	users  *mockUserRepo
	docs   *mockDocRepo
	blobs  *fakeBlobStore
}

// newEnv wires the handlers exactly as the router modules do, with fakes in
// place of Redis, Postgres and GCS.
func newEnv() *env {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	gate := &fakeGate{identity: &session.Identity{
		UserID: "user-1", Username: "alice", Email: "alice@example.com", Language: "en",
	}}
	users := &mockUserRepo{}
	docs := &mockDocRepo{}
	blobs := &fakeBlobStore{}
	cookies := helpers.NewCookieManager("", false)
	cfg := &config.Config{SupportedLanguages: "en,zh-hans", DefaultLanguage: "en"}

	accounts := application.NewAccountService(users, blobs, nil, logger, "avatars/default_avatar.png", false)
	documents := application.NewDocumentService(docs, blobs, logger, nil, "")

	ah := handlers.NewAccountHandler(accounts, documents, gate, logger, cookies, "en")
	dh := handlers.NewDocumentHandler(documents, logger, 10<<20)
	lh := handlers.NewLanguageHandler(cfg, gate, cookies, logger)

	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.GET("/register/", ah.RegisterPage)
	r.POST("/register/", ah.Register)
	r.GET("/login/", ah.LoginPage)
	r.POST("/login/", ah.Login)
	r.POST("/set-language/", lh.SetLanguage)

	auth := r.Group("/")
	auth.Use(middleware.RequireAuth(gate, handlers.LoginPath))
	{
		auth.POST("/logout/", ah.Logout)
		auth.GET("/profile/", ah.ProfilePage)
		auth.POST("/profile/", ah.ProfileUpdate)
		auth.GET("/upload/", dh.UploadPage)
		auth.POST("/upload/", dh.Upload)
		auth.GET("/documents/search", dh.Search)
	}

	return &env{router: r, gate: gate, users: users, docs: docs, blobs: blobs}
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Form      map[string]string `json:"form"`
		Errors    map[string]string `json:"errors"`
		User      map[string]any    `json:"user"`
		Documents []map[string]any  `json:"documents"`
	} `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var e envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

func postForm(e *env, path string, vals url.Values, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(vals.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if authed {
		req.AddCookie(&http.Cookie{Name: helpers.AccessCookie, Value: validToken})
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func get(e *env, path string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	if authed {
		req.AddCookie(&http.Cookie{Name: helpers.AccessCookie, Value: validToken})
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type filePart struct {
	field, filename, contentType, content string
}

func postMultipart(e *env, path string, vals url.Values, fp *filePart, authed bool) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k := range vals {
		_ = w.WriteField(k, vals.Get(k))
	}
	if fp != nil {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", `form-data; name="`+fp.field+`"; filename="`+fp.filename+`"`)
		hdr.Set("Content-Type", fp.contentType)
		part, _ := w.CreatePart(hdr)
		_, _ = part.Write([]byte(fp.content))
	}
	_ = w.Close()

	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if authed {
		req.AddCookie(&http.Cookie{Name: helpers.AccessCookie, Value: validToken})
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func TestRegisterMismatchPersistsNothing(t *testing.T) {
	e := newEnv()
	created := false
	e.users.createFn = func(ctx context.Context, u *entity.User) error {
		created = true
		return nil
	}

	w := postForm(e, "/register/", url.Values{
		"username":  {"alice"},
		"email":     {"alice@example.com"},
		"password1": {"supersecret"},
		"password2": {"different1"},
	}, false)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, forms.MsgPasswordMismatch, env.Data.Errors["password2"])
	assert.Equal(t, "alice", env.Data.Form["username"])
	assert.False(t, created)
	assert.Empty(t, e.gate.startedFor)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	e := newEnv()
	e.users.createFn = func(ctx context.Context, u *entity.User) error {
		return repository.ErrDuplicateUsername
	}

	w := postForm(e, "/register/", url.Values{
		"username":  {"alice"},
		"email":     {"alice@example.com"},
		"password1": {"supersecret"},
		"password2": {"supersecret"},
	}, false)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "username already taken", env.Data.Errors["username"])
	assert.Empty(t, e.gate.startedFor)
}

func TestRegisterSuccessStartsSession(t *testing.T) {
	e := newEnv()

	w := postForm(e, "/register/", url.Values{
		"username":  {"alice"},
		"email":     {"alice@example.com"},
		"password1": {"supersecret"},
		"password2": {"supersecret"},
	}, false)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, handlers.ProfilePath, w.Header().Get("Location"))
	assert.Equal(t, "user-1", e.gate.startedFor)

	ck := cookieNamed(w, helpers.AccessCookie)
	require.NotNil(t, ck)
	assert.Equal(t, validToken, ck.Value)
	assert.True(t, ck.HttpOnly)
}

func TestLoginGenericFailure(t *testing.T) {
	e := newEnv()
	e.users.getByUsernameFn = func(ctx context.Context, username string) (*entity.User, error) {
		return nil, repository.ErrNotFound
	}

	for _, vals := range []url.Values{
		{"username": {"ghost"}, "password": {"whatever1"}},
		{"username": {"alice"}},
	} {
		w := postForm(e, "/login/", vals, false)
		assert.Equal(t, http.StatusOK, w.Code)
		env := decode(t, w)
		assert.False(t, env.Success)
		assert.Equal(t, "invalid credentials", env.Data.Errors["__all__"])
	}
	assert.Empty(t, e.gate.startedFor)
}

func TestLoginSuccessHonorsNext(t *testing.T) {
	e := newEnv()
	hash, err := helpers.HashPassword("supersecret")
	require.NoError(t, err)
	e.users.getByUsernameFn = func(ctx context.Context, username string) (*entity.User, error) {
		return &entity.User{ID: "user-1", Username: "alice", Password: hash, IsActive: true}, nil
	}

	w := postForm(e, "/login/", url.Values{
		"username": {"alice"},
		"password": {"supersecret"},
		"next":     {"/upload/"},
	}, false)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/upload/", w.Header().Get("Location"))
	assert.Equal(t, "user-1", e.gate.startedFor)
}

func TestLoginRejectsOffsiteNext(t *testing.T) {
	e := newEnv()
	hash, err := helpers.HashPassword("supersecret")
	require.NoError(t, err)
	e.users.getByUsernameFn = func(ctx context.Context, username string) (*entity.User, error) {
		return &entity.User{ID: "user-1", Username: "alice", Password: hash, IsActive: true}, nil
	}

	w := postForm(e, "/login/", url.Values{
		"username": {"alice"},
		"password": {"supersecret"},
		"next":     {"//evil.example.com/"},
	}, false)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, handlers.ProfilePath, w.Header().Get("Location"))
}

func TestLoginPageRedirectsAuthenticated(t *testing.T) {
	e := newEnv()
	w := get(e, "/login/", true)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, handlers.ProfilePath, w.Header().Get("Location"))
}

func TestProfileRequiresAuth(t *testing.T) {
	e := newEnv()
	w := get(e, "/profile/", false)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, handlers.LoginPath, w.Header().Get("Location"))
}

func TestProfileListsOwnDocuments(t *testing.T) {
	e := newEnv()
	e.users.getByIDFn = func(ctx context.Context, id string) (*entity.User, error) {
		require.Equal(t, "user-1", id)
		return &entity.User{ID: "user-1", Username: "alice", Email: "alice@example.com", Bio: "hi"}, nil
	}
	now := time.Now()
	e.docs.listByOwnerFn = func(ctx context.Context, ownerID string) ([]entity.Document, error) {
		require.Equal(t, "user-1", ownerID)
		return []entity.Document{
			{ID: "doc-2", OwnerID: ownerID, Title: "newer", UploadedAt: now},
			{ID: "doc-1", OwnerID: ownerID, Title: "older", UploadedAt: now.Add(-time.Hour)},
		}, nil
	}

	w := get(e, "/profile/", true)
	assert.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.True(t, env.Success)
	assert.Equal(t, "alice", env.Data.Form["username"])
	require.Len(t, env.Data.Documents, 2)
	assert.Equal(t, "newer", env.Data.Documents[0]["title"])
	assert.Equal(t, "older", env.Data.Documents[1]["title"])
}

func TestProfileUpdateInvalidWebsite(t *testing.T) {
	e := newEnv()
	updated := false
	e.users.updateFn = func(ctx context.Context, u *entity.User) error {
		updated = true
		return nil
	}

	w := postForm(e, "/profile/", url.Values{
		"username": {"alice"},
		"email":    {"alice@example.com"},
		"website":  {"not a url"},
	}, true)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.False(t, env.Success)
	assert.Contains(t, env.Data.Errors, "website")
	assert.False(t, updated)
}

func TestProfileUpdateTargetsCaller(t *testing.T) {
	e := newEnv()
	e.users.getByIDFn = func(ctx context.Context, id string) (*entity.User, error) {
		return &entity.User{ID: id, Username: "alice", Email: "alice@example.com"}, nil
	}
	var updated *entity.User
	e.users.updateFn = func(ctx context.Context, u *entity.User) error {
		updated = u
		return nil
	}

	w := postForm(e, "/profile/", url.Values{
		"username": {"alice2"},
		"email":    {"alice2@example.com"},
		"bio":      {"updated bio"},
	}, true)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, handlers.ProfilePath, w.Header().Get("Location"))
	require.NotNil(t, updated)
	assert.Equal(t, "user-1", updated.ID)
	assert.Equal(t, "alice2", updated.Username)
	assert.Equal(t, "updated bio", updated.Bio)
}

func TestUploadRequiresAuth(t *testing.T) {
	e := newEnv()
	w := postMultipart(e, "/upload/", nil, &filePart{"document", "a.pdf", "application/pdf", "x"}, false)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, handlers.LoginPath, w.Header().Get("Location"))
}

func TestUploadRejectsBadExtension(t *testing.T) {
	e := newEnv()
	created := false
	e.docs.createFn = func(ctx context.Context, d *entity.Document) error {
		created = true
		return nil
	}

	w := postMultipart(e, "/upload/", nil, &filePart{"document", "virus.exe", "application/octet-stream", "MZ"}, true)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, forms.MsgInvalidFileFormat, env.Data.Errors["document"])
	assert.False(t, created)
	assert.Zero(t, e.blobs.puts)
}

func TestUploadRequiresFile(t *testing.T) {
	e := newEnv()
	w := postMultipart(e, "/upload/", url.Values{"title": {"My doc"}}, nil, true)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.Equal(t, forms.MsgNoFileSelected, env.Data.Errors["document"])
	assert.Zero(t, e.blobs.puts)
}

func TestUploadDefaultsTitle(t *testing.T) {
	e := newEnv()
	var created *entity.Document
	e.docs.createFn = func(ctx context.Context, d *entity.Document) error {
		created = d
		d.ID = "doc-1"
		return nil
	}

	w := postMultipart(e, "/upload/", nil, &filePart{"document", "notes.txt", "text/plain", "hello"}, true)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, handlers.ProfilePath, w.Header().Get("Location"))
	require.NotNil(t, created)
	assert.Equal(t, forms.DefaultDocumentTitle, created.Title)
	assert.Equal(t, "user-1", created.OwnerID)
	assert.Equal(t, 1, e.blobs.puts)
	assert.True(t, strings.HasPrefix(e.blobs.lastPath, "user_docs/user-1/"))
}

func TestUploadKeepsGivenTitle(t *testing.T) {
	e := newEnv()
	var created *entity.Document
	e.docs.createFn = func(ctx context.Context, d *entity.Document) error {
		created = d
		return nil
	}

	w := postMultipart(e, "/upload/", url.Values{"title": {"Q3 report"}},
		&filePart{"document", "report.pdf", "application/pdf", "%PDF"}, true)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	require.NotNil(t, created)
	assert.Equal(t, "Q3 report", created.Title)
}

func TestSearchWithoutQuery(t *testing.T) {
	e := newEnv()
	w := get(e, "/documents/search", true)
	assert.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.True(t, env.Success)
}

func TestLogoutDestroysSession(t *testing.T) {
	e := newEnv()
	w := postForm(e, "/logout/", nil, true)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, handlers.HomePath, w.Header().Get("Location"))
	assert.Equal(t, "user-1", e.gate.destroyedFor)

	ck := cookieNamed(w, helpers.AccessCookie)
	require.NotNil(t, ck)
	assert.Empty(t, ck.Value)
	assert.True(t, ck.MaxAge < 0)

	// Locale preference survives logout.
	assert.Nil(t, cookieNamed(w, helpers.LanguageCookie))
}

func TestSetLanguageValidCode(t *testing.T) {
	e := newEnv()
	w := postForm(e, "/set-language/", url.Values{
		"language": {"zh-hans"},
		"next":     {"/profile/"},
	}, false)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/profile/", w.Header().Get("Location"))

	ck := cookieNamed(w, helpers.LanguageCookie)
	require.NotNil(t, ck)
	assert.Equal(t, "zh-hans", ck.Value)
	assert.Equal(t, 365*24*60*60, ck.MaxAge)
	assert.False(t, ck.Secure)
}

func TestSetLanguageUpdatesSession(t *testing.T) {
	e := newEnv()
	w := postForm(e, "/set-language/", url.Values{"language": {"zh-hans"}}, true)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "user-1", e.gate.langSetFor)
	assert.Equal(t, "zh-hans", e.gate.langSetCode)
}

func TestSetLanguageInvalidCodeIsSilentNoOp(t *testing.T) {
	e := newEnv()
	w := postForm(e, "/set-language/", url.Values{"language": {"fr"}}, true)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Nil(t, cookieNamed(w, helpers.LanguageCookie))
	assert.Empty(t, e.gate.langSetFor)
}

func TestSetLanguageRedirectFallsBackToReferer(t *testing.T) {
	e := newEnv()
	req := httptest.NewRequest("POST", "/set-language/", strings.NewReader(url.Values{"language": {"en"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "http://example.com/upload/?draft=1")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/upload/?draft=1", w.Header().Get("Location"))
}

func TestSetLanguageRejectsGet(t *testing.T) {
	e := newEnv()
	w := get(e, "/set-language/", false)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
