package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/technotes/server/internal/tokens"
)

func newTestVerifier() *tokens.Issuer {
	return tokens.NewIssuer(tokens.Config{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	})
}

func TestAuthorize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		have     []string
		required []string
		want     bool
	}{
		{name: "single match", have: []string{"Employee"}, required: []string{"Employee"}, want: true},
		{name: "one of many suffices", have: []string{"Employee"}, required: []string{"Admin", "Manager", "Employee"}, want: true},
		{name: "no overlap", have: []string{"Employee"}, required: []string{"Admin", "Manager"}, want: false},
		{name: "empty required denies", have: []string{"Employee"}, required: nil, want: false},
		{name: "empty have denies", have: nil, required: []string{"Employee"}, want: false},
		{name: "case sensitive", have: []string{"employee"}, required: []string{"Employee"}, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Authorize(tt.have, tt.required))
		})
	}
}

func doAuthedRequest(t *testing.T, mw echo.MiddlewareFunc, header string) (*httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	return rec, handler(c)
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	verifier := newTestVerifier()
	auth := NewTokenAuth(verifier)
	token, _, err := verifier.IssueAccessToken("user-1", "bob", []string{"Employee"})
	require.NoError(t, err)

	t.Run("valid token passes and exposes claims", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/notes", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := auth.RequireAuth(func(c echo.Context) error {
			claims := ClaimsFromContext(c)
			require.NotNil(t, claims)
			assert.Equal(t, "bob", claims.Username)
			return c.NoContent(http.StatusOK)
		})
		require.NoError(t, handler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	for name, header := range map[string]string{
		"missing header": "",
		"no bearer":      token,
		"empty bearer":   "Bearer ",
		"garbage token":  "Bearer garbage",
	} {
		header := header
		t.Run(name, func(t *testing.T) {
			_, err := doAuthedRequest(t, auth.RequireAuth, header)
			require.Error(t, err)
			he, ok := err.(*echo.HTTPError)
			require.True(t, ok)
			assert.Equal(t, http.StatusUnauthorized, he.Code)
		})
	}
}

func TestRequireRoles(t *testing.T) {
	t.Parallel()

	verifier := newTestVerifier()
	auth := NewTokenAuth(verifier)
	token, _, err := verifier.IssueAccessToken("user-1", "bob", []string{"Employee"})
	require.NoError(t, err)

	run := func(t *testing.T, required ...string) error {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := auth.RequireAuth(func(c echo.Context) error {
			inner := auth.RequireRoles(required...)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})
			return inner(c)
		})
		return handler(c)
	}

	require.NoError(t, run(t, "Employee", "Manager"))

	err = run(t, "Admin", "Manager")
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, he.Code)
}

func TestRequireRoles_WithoutAuthIsUnauthorized(t *testing.T) {
	t.Parallel()

	auth := NewTokenAuth(newTestVerifier())
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := auth.RequireRoles("Admin")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	err := handler(c)
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}
