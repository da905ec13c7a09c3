package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/technotes/server/internal/tokens"
)

const claimsKey = "auth_claims"

// TokenAuth verifies bearer access tokens and enforces role checks.
// Verification happens once per request in RequireAuth; RequireRoles only
// consumes the already-verified claims.
type TokenAuth struct {
	Verifier *tokens.Issuer
}

func NewTokenAuth(verifier *tokens.Issuer) *TokenAuth {
	return &TokenAuth{Verifier: verifier}
}

func (m *TokenAuth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := m.Verifier.VerifyAccess(token)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		c.Set(claimsKey, claims)
		return next(c)
	}
}

// RequireRoles allows the request through when the claims hold at least one
// of the listed roles. It must run after RequireAuth.
func (m *TokenAuth) RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := ClaimsFromContext(c)
			if claims == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
			}
			if !Authorize(claims.Roles, roles) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
			}
			return next(c)
		}
	}
}

// Authorize grants access iff the two role sets intersect: any one
// matching role suffices.
func Authorize(have, required []string) bool {
	for _, want := range required {
		for _, role := range have {
			if role == want {
				return true
			}
		}
	}
	return false
}

func ClaimsFromContext(c echo.Context) *tokens.AccessClaims {
	claims, _ := c.Get(claimsKey).(*tokens.AccessClaims)
	return claims
}
