package router

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogdesk/internal/auth"
	"blogdesk/internal/config"
	"blogdesk/internal/db"
	"blogdesk/internal/errors"
	"blogdesk/internal/events"
	"blogdesk/internal/handler"
	"blogdesk/internal/logger"
	"blogdesk/internal/model"
	"blogdesk/internal/repository"
	"blogdesk/internal/service"
)

type testApp struct {
	e      *echo.Echo
	users  repository.UserRepository
	jwt    *auth.JWTService
	hasher *auth.BcryptHasher
}

func newTestApp(t *testing.T, loginRate float64) *testApp {
	t.Helper()

	gdb, err := db.NewSQL("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", model.NewID()))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	users := repository.NewUserRepository(gdb)
	blogs := repository.NewBlogRepository(gdb)
	images := repository.NewImageRepository(gdb)

	lg := logger.Discard()
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	hasher := auth.NewBcryptHasher(auth.DefaultBcryptCost)
	publisher := events.Noop{}
	cfg := &config.Config{SessionCookie: "blog_session", LoginRateLimit: loginRate}

	e := echo.New()
	e.Logger = lg
	Register(
		e,
		cfg,
		jwtService,
		handler.NewAuthHandler(service.NewAuthService(users, hasher, jwtService, publisher, lg), handler.SessionCookie{Name: cfg.SessionCookie}),
		handler.NewBlogHandler(service.NewBlogService(blogs, nil, time.Minute, publisher, lg)),
		handler.NewImageHandler(service.NewImageService(images, users, publisher, lg)),
		handler.NewUserHandler(service.NewUserService(users, publisher, lg)),
		handler.NewStatsHandler(service.NewStatsService(blogs, users, images)),
		handler.NewHealthHandler(func(ctx context.Context) error { return db.PingSQL(ctx, gdb) }),
	)

	return &testApp{e: e, users: users, jwt: jwtService, hasher: hasher}
}

func (a *testApp) do(t *testing.T, method, path string, body any, token string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

// seedUser stores a user directly and returns a session token for it.
func (a *testApp) seedUser(t *testing.T, email string, role model.Role) (*model.User, string) {
	t.Helper()
	hash, err := a.hasher.Hash("secret123")
	require.NoError(t, err)
	user := &model.User{
		ID:           model.NewID(),
		Name:         "Seeded " + string(role),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, a.users.Create(context.Background(), user))
	token, _, err := a.jwt.IssueSession(user)
	require.NoError(t, err)
	return user, token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestAuthFlow(t *testing.T) {
	app := newTestApp(t, 100)

	rec := app.do(t, http.MethodPost, "/api/auth/signup", map[string]string{"name": "Ann", "email": "ann@example.com", "password": "123"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Password must be at least 6 characters", decode[errors.ErrorResponse](t, rec).Error)

	rec = app.do(t, http.MethodPost, "/api/auth/signup", map[string]string{"email": "ann@example.com"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email and password are required", decode[errors.ErrorResponse](t, rec).Error)

	rec = app.do(t, http.MethodPost, "/api/auth/signup", "{not json", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", decode[errors.ErrorResponse](t, rec).Error)

	signup := map[string]string{"name": "Ann", "email": "Ann@Example.com", "password": "secret123"}
	rec = app.do(t, http.MethodPost, "/api/auth/signup", signup, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[handler.SignupResponse](t, rec)
	assert.Equal(t, "ann@example.com", created.User.Email)
	assert.Equal(t, model.RoleUser, created.User.Role)

	rec = app.do(t, http.MethodPost, "/api/auth/signup", signup, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "EMAIL_TAKEN", decode[errors.ErrorResponse](t, rec).Code)

	unknown := app.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "nobody@example.com", "password": "secret123"}, "")
	wrong := app.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "ann@example.com", "password": "wrong-pass"}, "")
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.JSONEq(t, unknown.Body.String(), wrong.Body.String())

	rec = app.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "ANN@example.com", "password": "secret123"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := decode[handler.LoginResponse](t, rec)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, created.User.ID, login.User.ID)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "blog_session" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, login.Token, cookie.Value)

	rec = app.do(t, http.MethodGet, "/api/auth/session", nil, "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	session := decode[handler.SessionResponse](t, rec)
	assert.Equal(t, "ann@example.com", session.User.Email)
	assert.WithinDuration(t, login.ExpiresAt, session.Expires, time.Second)

	rec = app.do(t, http.MethodGet, "/api/auth/session", nil, login.Token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/auth/session", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/auth/logout", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, "", cleared[0].Value)
	assert.Less(t, cleared[0].MaxAge, 0)
}

func TestLoginRejectsPasswordSharingStoredPrefix(t *testing.T) {
	app := newTestApp(t, 100)
	password := strings.Repeat("x", 72)

	rec := app.do(t, http.MethodPost, "/api/auth/signup", map[string]string{"name": "Long", "email": "long@example.com", "password": password}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = app.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "long@example.com", "password": password + "WRONG-SUFFIX"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decode[errors.ErrorResponse](t, rec).Code)

	rec = app.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "long@example.com", "password": password}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminGate(t *testing.T) {
	app := newTestApp(t, 100)
	member, userToken := app.seedUser(t, "member@example.com", model.RoleUser)

	rec := app.do(t, http.MethodGet, "/api/admin/blogs", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decode[errors.ErrorResponse](t, rec).Code)

	rec = app.do(t, http.MethodGet, "/api/admin/blogs", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(t, http.MethodPut, "/api/admin/users/"+member.ID, map[string]string{"role": "admin"}, userToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Forbidden: Admin access required", decode[errors.ErrorResponse](t, rec).Error)

	stored, err := app.users.FindByID(context.Background(), member.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, stored.Role)
}

func TestBlogLifecycle(t *testing.T) {
	app := newTestApp(t, 100)
	_, token := app.seedUser(t, "admin@example.com", model.RoleAdmin)

	rec := app.do(t, http.MethodPost, "/api/admin/blogs", map[string]string{"title": "Hi", "content": "Long enough content"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Title must be at least 3 characters", decode[errors.ErrorResponse](t, rec).Error)

	rec = app.do(t, http.MethodPost, "/api/admin/blogs", map[string]string{"title": "Hello World", "content": "Long enough content"}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	draft := decode[handler.BlogResponse](t, rec).Blog
	assert.Equal(t, model.BlogDraft, draft.Status)
	assert.Equal(t, "Seeded admin", draft.Author)

	rec = app.do(t, http.MethodGet, "/api/blogs", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]model.Blog](t, rec))

	rec = app.do(t, http.MethodPut, "/api/admin/blogs/"+draft.ID, map[string]string{"status": "archived"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPut, "/api/admin/blogs/bad-id", map[string]string{"status": "published"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid blog ID", decode[errors.ErrorResponse](t, rec).Error)

	rec = app.do(t, http.MethodPut, "/api/admin/blogs/"+draft.ID, map[string]string{"status": "published"}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	published := decode[handler.BlogResponse](t, rec).Blog
	assert.Equal(t, model.BlogPublished, published.Status)
	assert.Equal(t, "Hello World", published.Title)

	rec = app.do(t, http.MethodGet, "/api/blogs", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Blog](t, rec), 1)

	rec = app.do(t, http.MethodGet, "/api/blogs/"+draft.ID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[handler.BlogResponse](t, rec).Blog.Views)

	rec = app.do(t, http.MethodGet, "/api/blogs/bad-id", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/blogs/"+model.NewID(), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Blog not found", decode[errors.ErrorResponse](t, rec).Error)

	rec = app.do(t, http.MethodGet, "/api/admin/stats", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[service.DashboardStats](t, rec)
	assert.EqualValues(t, 1, stats.TotalBlogs)
	assert.EqualValues(t, 1, stats.PublishedBlogs)
	assert.EqualValues(t, 1, stats.TotalUsers)
	assert.EqualValues(t, 1, stats.TotalViews)

	rec = app.do(t, http.MethodDelete, "/api/admin/blogs/"+draft.ID, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = app.do(t, http.MethodDelete, "/api/admin/blogs/"+draft.ID, nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestImagesAndRoles(t *testing.T) {
	app := newTestApp(t, 100)
	admin, token := app.seedUser(t, "admin@example.com", model.RoleAdmin)
	member, _ := app.seedUser(t, "member@example.com", model.RoleUser)

	upload := map[string]any{"name": "logo.png", "data": "data:image/png;base64,iVBORw0KGgo=", "mimeType": "image/png", "size": 8}
	rec := app.do(t, http.MethodPost, "/api/admin/images", upload, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = app.do(t, http.MethodPost, "/api/admin/images", map[string]any{"name": "notes.txt", "data": "data:text/plain;base64,aGk=", "mimeType": "text/plain", "size": 2}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/admin/images", map[string]any{"name": "raw.png", "data": strings.Repeat("A", 6<<20), "mimeType": "image/png", "size": 1}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Image data must be a base64 data URL", decode[errors.ErrorResponse](t, rec).Error)

	rec = app.do(t, http.MethodPost, "/api/admin/images", map[string]any{"name": "logo.png"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required fields", decode[errors.ErrorResponse](t, rec).Error)

	rec = app.do(t, http.MethodGet, "/api/admin/images", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	images := decode[[]model.ImageView](t, rec)
	require.Len(t, images, 1)
	require.NotNil(t, images[0].UploadedBy)
	assert.Equal(t, admin.Email, images[0].UploadedBy.Email)

	rec = app.do(t, http.MethodDelete, "/api/admin/images/"+images[0].ID, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = app.do(t, http.MethodDelete, "/api/admin/images/"+images[0].ID, nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(t, http.MethodPut, "/api/admin/users/"+member.ID, map[string]string{"role": "owner"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid role. Must be 'admin' or 'user'", decode[errors.ErrorResponse](t, rec).Error)

	rec = app.do(t, http.MethodPut, "/api/admin/users/"+model.NewID(), map[string]string{"role": "admin"}, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(t, http.MethodPut, "/api/admin/users/"+member.ID, map[string]string{"role": "admin"}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.do(t, http.MethodGet, "/api/admin/users", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	list := decode[handler.UsersResponse](t, rec)
	require.Len(t, list.Users, 2)
	for _, u := range list.Users {
		assert.Equal(t, model.RoleAdmin, u.Role)
	}
}

func TestHealthAndUnknownRoute(t *testing.T) {
	app := newTestApp(t, 100)

	rec := app.do(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodGet, "/readyz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = app.do(t, http.MethodGet, "/api/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, errors.ErrorResponse{Error: "Not Found", Code: "NOT_FOUND"}, decode[errors.ErrorResponse](t, rec))
}

func TestLoginRateLimit(t *testing.T) {
	app := newTestApp(t, 0.001)

	for i := 0; i < loginBurst; i++ {
		rec := app.do(t, http.MethodPost, "/api/auth/login", map[string]string{}, "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	}
	rec := app.do(t, http.MethodPost, "/api/auth/login", map[string]string{}, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", decode[errors.ErrorResponse](t, rec).Code)
}

func TestErrorBody(t *testing.T) {
	status, body, _ := errorBody(errors.ErrBlogNotFound)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "BLOG_NOT_FOUND", body.Code)

	status, body, _ = errorBody(stderrors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", body.Error)

	status, body, cause := errorBody(echo.NewHTTPError(http.StatusMethodNotAllowed).SetInternal(stderrors.New("inner")))
	assert.Equal(t, http.StatusMethodNotAllowed, status)
	assert.Equal(t, "METHOD_NOT_ALLOWED", body.Code)
	assert.EqualError(t, cause, "inner")
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, "NOT_FOUND", statusCode(http.StatusNotFound))
	assert.Equal(t, "TOO_MANY_REQUESTS", statusCode(http.StatusTooManyRequests))
	assert.Equal(t, "ERROR", statusCode(599))
}
