package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	mw "github.com/technotes/server/internal/middleware"
)

type Deps struct {
	Auth  *AuthHTTP
	Users *UsersHTTP
	Notes *NotesHTTP

	TokenAuth    *mw.TokenAuth
	LoginLimiter *mw.LoginLimiter
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	auth := e.Group("/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("", d.Auth.Login, d.LoginLimiter.Limit)
	auth.GET("/refresh", d.Auth.Refresh)
	auth.POST("/logout", d.Auth.Logout)

	// User administration needs a management role; notes only a login.
	users := e.Group("/users", d.TokenAuth.RequireAuth, d.TokenAuth.RequireRoles("Admin", "Manager"))
	users.GET("", d.Users.List)
	users.POST("", d.Users.Create)
	users.GET("/:id", d.Users.Get)
	users.PATCH("/:id", d.Users.Update)
	users.DELETE("/:id", d.Users.Delete)

	notes := e.Group("/notes", d.TokenAuth.RequireAuth)
	notes.GET("", d.Notes.List)
	notes.POST("", d.Notes.Create)
	notes.GET("/search", d.Notes.Search)
	notes.GET("/:id", d.Notes.Get)
	notes.PATCH("/:id", d.Notes.Update)
	notes.DELETE("/:id", d.Notes.Delete)
}
