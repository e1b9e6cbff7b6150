// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/vanguardhq/defense-api/internal/config"
	"github.com/vanguardhq/defense-api/internal/handler"
	"github.com/vanguardhq/defense-api/internal/middleware"
	"github.com/vanguardhq/defense-api/internal/model"
)

// Register mounts all routes. rdb may be nil, in which case idempotency
// replay and rate limiting are disabled and the routes behave as plain
// handlers.
func Register(e *echo.Echo, a *handler.AuthHandler, adm *handler.AdminHandler, jwtSecret string, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	// Credential endpoints are rate limited per IP; signup additionally
	// honors the x-idempotency-key header so client retries are safe.
	ag := e.Group("/auth", middleware.RateLimit(rlCfg, rdb))
	ag.POST("/signup", a.Signup, middleware.Idempotency(rdb))
	ag.POST("/login", a.Login)

	// Admin endpoints: token validation first, then the role gate.
	admin := e.Group("/admin")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.GET("/stats", adm.Stats)
}
