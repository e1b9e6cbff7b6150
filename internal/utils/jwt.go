package utils // helpers for signing the tokens returned by the auth endpoints

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vanguardhq/defense-api/internal/model"
)

// SignedToken is a serialized HS256 JWT plus its UTC expiration time.
type SignedToken struct {
	Token string
	Exp   time.Time
}

// NewAccessToken signs a short-lived access token for the account. Claims
// carry the subject (account id as a decimal string), email and role so
// the middleware can rebuild an identity without a database round trip.
func NewAccessToken(secret string, acc model.Account, ttl time.Duration) (SignedToken, error) {
	return signToken(secret, acc, ttl, "")
}

// NewRefreshToken signs a long-lived refresh token carrying the same
// payload shape as the access token plus a "typ" claim. Both token kinds
// share one signing secret; the typ claim is what tells them apart.
func NewRefreshToken(secret string, acc model.Account, ttl time.Duration) (SignedToken, error) {
	return signToken(secret, acc, ttl, "refresh")
}

func signToken(secret string, acc model.Account, ttl time.Duration, typ string) (SignedToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":   strconv.FormatUint(acc.ID, 10),
		"email": acc.Email,
		"role":  acc.Role,
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	}
	if typ != "" {
		claims["typ"] = typ
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}
