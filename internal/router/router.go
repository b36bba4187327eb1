package router // route registration for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/medtrack/medication-reminder/internal/handler"
	"github.com/medtrack/medication-reminder/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance. Currently it exposes only a health check
// for load balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication routes. Unauthenticated
// operations live under /v1/auth and carry the rate limiter (register
// and login are the brute-force surface); /v1/me requires a valid access
// token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterMedications registers the medication CRUD and action routes.
// All of them require a valid access token. The list endpoint optionally
// runs behind the Redis response cache; mutations bypass it and rely on
// the short TTL for convergence.
func RegisterMedications(e *echo.Echo, m *handler.MedicationHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/medications")
	g.Use(middleware.JWTAuth(jwtSecret))

	if cache != nil {
		g.GET("", m.List, cache)
	} else {
		g.GET("", m.List)
	}
	g.POST("", m.Add)
	g.PUT("/:id", m.Update)
	g.DELETE("/:id", m.Delete)
	g.POST("/:id/take", m.Take)
	g.POST("/:id/snooze", m.Snooze)
}
