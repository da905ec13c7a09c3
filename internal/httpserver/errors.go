package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/technotes/server/internal/service"
)

// httpError maps service failure classes onto statuses. Anything outside
// the taxonomy becomes an opaque 500 so internals never leak.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, trimClass(err, service.ErrValidation))
	case errors.Is(err, service.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, service.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
	case errors.Is(err, service.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, trimClass(err, service.ErrConflict))
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, trimClass(err, service.ErrNotFound))
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}
}

// trimClass strips the "validation failed: " style prefix so clients see
// just the human message.
func trimClass(err, class error) string {
	msg := err.Error()
	prefix := class.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}
