package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// AccountCounter supplies the live account total for the stats endpoint.
type AccountCounter interface {
	Count(ctx context.Context) (uint64, error)
}

// AdminHandler serves the /admin endpoints. Routes are gated to ADMIN by
// the role middleware; the handler itself does no authorization.
type AdminHandler struct {
	Accounts AccountCounter
}

func NewAdminHandler(accounts AccountCounter) *AdminHandler {
	return &AdminHandler{Accounts: accounts}
}

// Stats returns operational counters. The account count is live; report
// and operation counters are placeholders until those subsystems land.
func (h *AdminHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Accounts.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"users":            users,
		"reports":          50,
		"activeOperations": 5,
	})
}
