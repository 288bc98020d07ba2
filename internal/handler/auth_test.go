package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/hotel-rate-configurator/internal/config"
	"github.com/iliyamo/hotel-rate-configurator/internal/middleware"
	"github.com/iliyamo/hotel-rate-configurator/internal/model"
	"github.com/iliyamo/hotel-rate-configurator/internal/repository"
)

func newAuthServer(t *testing.T) *echo.Echo {
	t.Helper()
	cfg := config.Config{JWTSecret: "test-secret", AccessTTLMin: 15, BcryptCost: bcrypt.MinCost}
	a := NewAuthHandler(cfg, repository.NewMemoryOperatorRepo())
	e := echo.New()
	e.POST("/v1/auth/register", a.Register)
	e.POST("/v1/auth/login", a.Login)
	e.GET("/v1/me", a.Me, middleware.JWTAuth(cfg.JWTSecret))
	return e
}

func post(e *echo.Echo, target, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeAuth(t *testing.T, rec *httptest.ResponseRecorder) authResp {
	t.Helper()
	var out authResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestRegisterBootstrapsAdmin(t *testing.T) {
	e := newAuthServer(t)

	rec := post(e, "/v1/auth/register", `{"email":" Admin@Example.com ","password":"password1","role":"VIEWER"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	admin := decodeAuth(t, rec)
	assert.Equal(t, model.RoleAdmin, admin.Operator.Role, "the first operator is always an admin")
	assert.Equal(t, "admin@example.com", admin.Operator.Email)
	assert.NotEmpty(t, admin.Access.Token)

	// Later registrations need an admin token.
	rec = post(e, "/v1/auth/register", `{"email":"ed@example.com","password":"password2","role":"EDITOR"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = post(e, "/v1/auth/register", `{"email":"ed@example.com","password":"password2","role":"EDITOR"}`, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = post(e, "/v1/auth/register", `{"email":"ed@example.com","password":"password2","role":"EDITOR"}`, admin.Access.Token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	editor := decodeAuth(t, rec)
	assert.Equal(t, model.RoleEditor, editor.Operator.Role)

	rec = post(e, "/v1/auth/register", `{"email":"v@example.com","password":"password3"}`, editor.Access.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = post(e, "/v1/auth/register", `{"email":"ed@example.com","password":"password2"}`, admin.Access.Token)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = post(e, "/v1/auth/register", `{"email":"short@example.com","password":"pw"}`, admin.Access.Token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginAndMe(t *testing.T) {
	e := newAuthServer(t)
	require.Equal(t, http.StatusCreated, post(e, "/v1/auth/register", `{"email":"a@example.com","password":"password1"}`, "").Code)

	assert.Equal(t, http.StatusUnauthorized, post(e, "/v1/auth/login", `{"email":"a@example.com","password":"wrong-pass"}`, "").Code)
	assert.Equal(t, http.StatusUnauthorized, post(e, "/v1/auth/login", `{"email":"b@example.com","password":"password1"}`, "").Code)
	assert.Equal(t, http.StatusBadRequest, post(e, "/v1/auth/login", `{"email":""}`, "").Code)

	rec := post(e, "/v1/auth/login", `{"email":"A@example.com","password":"password1"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	tok := decodeAuth(t, rec).Access.Token

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	me := httptest.NewRecorder()
	e.ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code, me.Body.String())
	var op operatorPart
	require.NoError(t, json.Unmarshal(me.Body.Bytes(), &op))
	assert.Equal(t, "a@example.com", op.Email)
	assert.Equal(t, model.RoleAdmin, op.Role)

	req = httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	me = httptest.NewRecorder()
	e.ServeHTTP(me, req)
	assert.Equal(t, http.StatusUnauthorized, me.Code)
}

func TestReady(t *testing.T) {
	e := echo.New()
	e.GET("/readyz", Ready(nil))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	ts := newTestServer(t, nil)
	ts.e.GET("/readyz", Ready(ts.svc))
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/readyz", "").Code)

	rec = httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/healthz", nil), rec)
	require.NoError(t, Health(c))
	assert.Equal(t, "ok", rec.Body.String())
}
