package handler

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vanguardhq/defense-api/internal/auth"
	"github.com/vanguardhq/defense-api/internal/model"
	"github.com/vanguardhq/defense-api/internal/repository"
)

// AuthService is the slice of the auth core the handlers call. Declared
// here so handler tests can substitute a mock.
type AuthService interface {
	Signup(ctx context.Context, email, password, unitName string) (model.Account, error)
	ValidateCredentials(ctx context.Context, email, password string) (model.Account, bool, error)
	Login(ctx context.Context, acc model.Account) (auth.TokenPair, error)
}

// AuthHandler serves the /auth endpoints.
type AuthHandler struct {
	Auth AuthService
}

func NewAuthHandler(a AuthService) *AuthHandler { return &AuthHandler{Auth: a} }

// ----- DTOs -----

type signupReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	UnitName string `json:"unitName"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// accountResp is the account as returned to clients. There is no password
// field on purpose; the hash never leaves the service layer.
type accountResp struct {
	ID        uint64    `json:"id"`
	Email     string    `json:"email"`
	UnitName  string    `json:"unitName"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toAccountResp(a model.Account) accountResp {
	return accountResp{
		ID:        a.ID,
		Email:     a.Email,
		UnitName:  a.UnitName,
		Role:      a.Role,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// validateSignup returns per-field messages for a malformed signup body.
func validateSignup(req signupReq) map[string]string {
	fields := map[string]string{}
	if _, err := mail.ParseAddress(req.Email); err != nil || req.Email == "" {
		fields["email"] = "must be a valid email address"
	}
	if len(req.Password) < 8 {
		fields["password"] = "must be at least 8 characters"
	}
	if strings.TrimSpace(req.UnitName) == "" {
		fields["unitName"] = "must not be empty"
	}
	return fields
}

// Signup registers a new account. 201 with the created account, 409 when
// the email is already in use, 400 with field detail on a bad body.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if fields := validateSignup(req); len(fields) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": fields})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	acc, err := h.Auth.Signup(ctx, req.Email, req.Password, req.UnitName)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already in use"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create account failed"})
	}
	return c.JSON(http.StatusCreated, toAccountResp(acc))
}

// Login validates credentials and returns a token pair. Unknown email and
// wrong password produce the same 401 body.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	acc, ok, err := h.Auth.ValidateCredentials(ctx, req.Email, req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	pair, err := h.Auth.Login(ctx, acc)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, pair)
}
