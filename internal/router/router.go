package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/hotel-rate-configurator/internal/handler"    // HTTP handlers
	"github.com/iliyamo/hotel-rate-configurator/internal/middleware" // JWT, role, rate limit and cache middleware
	"github.com/iliyamo/hotel-rate-configurator/internal/service"    // live configuration
)

// RegisterRoutes registers the routes that do not require authentication:
// liveness and readiness probes.
func RegisterRoutes(e *echo.Echo, svc *service.Configurator) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(svc))
}

// RegisterAuth registers the operator account routes.  register and login
// live under /v1/auth without a session; /v1/me needs a valid access token.
// limit throttles the unauthenticated endpoints per client IP.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limit)
	// Register checks the bearer itself so that the first operator can be
	// created before anyone holds a token.
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterRates registers the rate grid API.  Every route needs a valid
// access token and is rate limited.  Reads are open to any role and go
// through the response cache; writes need EDITOR or ADMIN.
func RegisterRates(e *echo.Echo, h *handler.StoreHandler, jwtSecret string, limit, cache echo.MiddlewareFunc) {
	read := e.Group("/v1", middleware.JWTAuth(jwtSecret), limit, cache)
	read.GET("/store", h.GetStore)
	read.GET("/grid", h.GetGrid)
	read.GET("/price", h.GetPrice)
	read.GET("/price/option", h.GetOptionPrice)
	read.GET("/restrictions", h.GetRestriction)
	read.GET("/policy", h.GetPolicy)
	read.GET("/preview", h.Preview)

	write := e.Group("/v1", middleware.JWTAuth(jwtSecret), limit, middleware.RequireWriter())

	// Cell edits of a rate plan.  Dates travel in the body or query string.
	write.PUT("/rates/:id/overrides", h.PutOverride)
	write.DELETE("/rates/:id/overrides", h.DeleteOverride)
	write.PUT("/rates/:id/option-overrides", h.PutOptionOverride)
	write.DELETE("/rates/:id/option-overrides", h.DeleteOptionOverride)
	write.PUT("/rates/:id/supplements/:room", h.PutSupplement)
	write.DELETE("/rates/:id/supplements/:room", h.DeleteSupplement)
	write.PUT("/rates/:id/restrictions", h.PutRestriction)
	write.DELETE("/rates/:id/restrictions", h.DeleteRestriction)
	write.PUT("/rates/:id/base-prices/:room", h.PutBasePrice)
	write.DELETE("/rates/:id/base-prices/:room", h.DeleteBasePrice)
	write.PUT("/rates/:id/option-prices", h.PutOptionPrice)
	write.DELETE("/rates/:id/option-prices", h.DeleteOptionPrice)
	write.PUT("/rates/:id/policy", h.PutRatePolicy)
	write.PUT("/rates/:id/policy-overrides", h.PutPolicyOverride)
	write.DELETE("/rates/:id/policy-overrides", h.DeletePolicyOverride)

	// Catalogue.
	write.POST("/clusters", h.CreateCluster)
	write.POST("/rooms", h.CreateRoom)
	write.DELETE("/rooms/:id", h.DeleteRoom)
	write.POST("/rooms/:id/options", h.CreateOption)
	write.PUT("/rooms/:id/options/:option/delta", h.PutOptionDelta)
	write.POST("/rates", h.CreateRate)
	write.DELETE("/rates/:id", h.DeleteRate)
	write.POST("/policies", h.CreatePolicy)

	// Calendar and anchor.
	write.PUT("/anchor-rates", h.PutAnchorRate)
	write.DELETE("/anchor-rates", h.DeleteAnchorRate)
	write.PUT("/days/base", h.PutBaseRate)
	write.PUT("/bar-room", h.PutBarRoom)
	write.PUT("/pricing-model", h.PutPricingModel)
	write.POST("/calendar", h.ResetCalendar)
}
