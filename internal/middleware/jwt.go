// Package middleware provides the request-processing chain shared by the
// routers: bearer-token validation, role enforcement, idempotent replay
// and rate limiting.
package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/vanguardhq/defense-api/internal/auth"
)

// identityKey is the context key under which JWTAuth stores the validated
// identity. Downstream code reads it through IdentityFrom only.
const identityKey = "identity"

// IdentityFrom returns the identity placed in the context by JWTAuth.
// ok is false when the request never passed token validation.
func IdentityFrom(c echo.Context) (auth.Identity, bool) {
	ident, ok := c.Get(identityKey).(auth.Identity)
	return ident, ok
}

// JWTAuth validates the Bearer access token and stores the resulting
// identity in the request context. This is the single point where a raw
// token becomes a typed identity; the role guard and handlers never touch
// the token themselves. Every failure mode (missing header, bad
// signature, expired token, payload missing sub/email/role) is a 401.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			ident, ok := identityFromClaims(claims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token payload"})
			}
			c.Set(identityKey, ident)
			return next(c)
		}
	}
}

// identityFromClaims maps the token payload to an Identity. A payload
// missing sub, email or role is rejected; an absent role fails closed
// here rather than reaching the role guard as an undefined value.
func identityFromClaims(claims jwt.MapClaims) (auth.Identity, bool) {
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if sub == "" || email == "" || role == "" {
		return auth.Identity{}, false
	}
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return auth.Identity{}, false
	}
	return auth.Identity{UserID: id, Email: email, Role: role}, true
}
