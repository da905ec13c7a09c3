package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/technotes/server/internal/logging"
	"github.com/technotes/server/internal/service"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

type registerRequest struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.Register(ctx, req.Username, req.Password, req.Roles); err != nil {
		return httpError(err)
	}

	// Responds 200 rather than 201; clients depend on it.
	return c.JSON(http.StatusOK, echo.Map{
		"message": "User successfully registered",
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		return httpError(err)
	}

	c.SetCookie(newRefreshCookie(res.RefreshToken, h.Svc.Tokens.RefreshTTL()))

	return c.JSON(http.StatusOK, echo.Map{
		"accessToken": res.AccessToken,
	})
}

// Refresh reads the cookie and answers 401 when it is absent but 403 when
// it is present and inadmissible: the two must stay distinct.
func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	accessToken, err := h.Svc.Refresh(ctx, cookie.Value)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"accessToken": accessToken,
	})
}

// Logout is idempotent and never fails. Clearing the cookie is all it
// does: the refresh token itself stays valid until expiry.
func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	if _, err := c.Cookie(refreshCookieName); err != nil {
		return c.NoContent(http.StatusNoContent)
	}

	c.SetCookie(clearRefreshCookie())
	l.Info("logout_successful")
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Cookie cleared",
	})
}
