package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole gates a route to identities holding one of the given roles.
// With no roles declared the route is unrestricted. Otherwise a request
// without a validated identity, with a roleless identity, or with a role
// outside the declared set is rejected with 403. This check runs strictly
// after JWTAuth and never validates the token itself.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if len(allowed) == 0 {
				return next(c)
			}
			ident, ok := IdentityFrom(c)
			if !ok || ident.Role == "" || !allowed[ident.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
