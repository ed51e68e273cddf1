package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"auth-dashboard/internal/cache"
	"auth-dashboard/internal/dto"
	"auth-dashboard/internal/logging"
	"auth-dashboard/internal/repository"
	"auth-dashboard/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type testValidator struct{ v *validator.Validate }

func (tv testValidator) Validate(i any) error { return tv.v.Struct(i) }

// fastHasher 避免 bcrypt 拖慢測試
type fastHasher struct{}

func (fastHasher) Hash(p string) (string, error) { return "h:" + p, nil }

func (fastHasher) Compare(hash, p string) error {
	if hash == "" || hash != "h:"+p {
		return service.ErrInvalidCredentials
	}
	return nil
}

func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	ctx := context.Background()
	repo, err := repository.NewMemoryRepository()
	require.NoError(t, err)
	_, err = service.EnsureDefaultUsers(ctx, repo, fastHasher{}, logging.Discard())
	require.NoError(t, err)

	issuer, err := service.NewJWTIssuer("secret", time.Hour)
	require.NoError(t, err)
	authSvc := service.NewAuthService(repo, cache.NewMemoryTokens(), issuer, service.WithHasher(fastHasher{}))

	e := echo.New()
	e.Validator = testValidator{v: validator.New()}
	Setup(e, Deps{Auth: authSvc, Users: service.NewUserService(repo), Repo: repo})
	return e
}

func call(t *testing.T, e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func sessionFrom(t *testing.T, rec *httptest.ResponseRecorder) dto.SessionResponse {
	t.Helper()
	var sess dto.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	return sess
}

func TestSetupRoutes(t *testing.T) {
	e := newServer(t)

	got := map[string]struct{}{}
	for _, r := range e.Routes() {
		got[r.Method+" "+r.Path] = struct{}{}
	}

	expected := []string{
		http.MethodGet + " /api/ping",
		http.MethodPost + " /api/auth/login",
		http.MethodPost + " /api/auth/register",
		http.MethodGet + " /api/auth/me",
		http.MethodPost + " /api/auth/logout",
		http.MethodGet + " /api/users",
		http.MethodGet + " /api/users/:id",
		http.MethodPost + " /api/users",
		http.MethodPut + " /api/users/:id",
		http.MethodDelete + " /api/users/:id",
		http.MethodGet + " /api/approvals",
		http.MethodPost + " /api/approvals/:id/approve",
		http.MethodPost + " /api/approvals/:id/reject",
	}
	for _, k := range expected {
		_, ok := got[k]
		require.True(t, ok, "missing route %s", k)
	}
}

func TestApprovalFlow(t *testing.T) {
	e := newServer(t)

	// 註冊後待核准
	rec := call(t, e, http.MethodPost, "/api/auth/register", "",
		`{"email":"new@x.com","password":"secret1","first_name":"A","last_name":"B"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	pending := sessionFrom(t, rec)
	require.False(t, pending.User.IsApproved)

	rec = call(t, e, http.MethodGet, "/api/auth/me", pending.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, e, http.MethodGet, "/api/users", pending.Token, "")
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "pending_approval")

	rec = call(t, e, http.MethodPost, "/api/auth/login", "", `{"email":"new@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// 一般使用者不能核准
	rec = call(t, e, http.MethodPost, "/api/auth/login", "", `{"email":"test@example.com","password":"password123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	userTok := sessionFrom(t, rec).Token
	rec = call(t, e, http.MethodGet, "/api/approvals", userTok, "")
	require.Equal(t, http.StatusForbidden, rec.Code)

	// 管理員核准
	rec = call(t, e, http.MethodPost, "/api/auth/login", "", `{"email":"admin@example.com","password":"admin123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	adminTok := sessionFrom(t, rec).Token

	rec = call(t, e, http.MethodGet, "/api/approvals", adminTok, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "new@x.com")

	rec = call(t, e, http.MethodPost, "/api/approvals/3/approve", adminTok, "")
	require.Equal(t, http.StatusOK, rec.Code)

	// 原 token 不需重新登入即看到核准
	rec = call(t, e, http.MethodGet, "/api/users", pending.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"total":3`)

	rec = call(t, e, http.MethodPost, "/api/auth/logout", pending.Token, "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = call(t, e, http.MethodGet, "/api/auth/me", pending.Token, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestValidationAndPing(t *testing.T) {
	e := newServer(t)

	rec := call(t, e, http.MethodPost, "/api/auth/login", "", `{"email":"not-an-email","password":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "validation")

	long := strings.Repeat("p", 80)
	rec = call(t, e, http.MethodPost, "/api/auth/register", "",
		`{"email":"long@x.com","password":"`+long+`","first_name":"L","last_name":"P"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "validation")

	rec = call(t, e, http.MethodGet, "/api/ping", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(t, e, http.MethodPost, "/api/auth/login", "", `{"email":"test@example.com","password":"password123"}`)
	tok := sessionFrom(t, rec).Token
	rec = call(t, e, http.MethodGet, "/api/ping", tok, "")
	require.Equal(t, http.StatusOK, rec.Code)
}
