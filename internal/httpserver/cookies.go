package httpserver

import (
	"net/http"
	"time"
)

// refreshCookieName matches what clients already have stored.
const refreshCookieName = "jwt"

// newRefreshCookie carries the refresh token back to the browser. HttpOnly
// keeps it out of script reach; SameSite=None allows the cross-site
// frontend, which in turn requires Secure.
func newRefreshCookie(value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     refreshCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}

// clearRefreshCookie must mirror the set-cookie attributes or browsers
// will not drop the cookie.
func clearRefreshCookie() *http.Cookie {
	return &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}
