package handler

import (
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// EntityRoutes is implemented by every CRUDHandler
type EntityRoutes interface {
	Entity() string
	Register(g *echo.Group, guard echo.MiddlewareFunc)
}

// Routes collects the handlers mounted by RegisterRoutes
type Routes struct {
	// BasePath prefixes every entity group, e.g. "/api"
	BasePath string
	Entities []EntityRoutes
	Logos    *LogoHandler
	Health   *HealthHandler
	Events   *WebSocketHandler
	// Guard protects write endpoints; nil leaves them open
	Guard echo.MiddlewareFunc
	// Middleware runs on every API route (language, rate limit)
	Middleware []echo.MiddlewareFunc
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, r Routes) {
	if r.Health != nil {
		e.GET("/health", r.Health.Check)
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/openapi.json", ServeOpenAPI3Spec(r.BasePath))

	api := e.Group(r.BasePath, r.Middleware...)

	for _, h := range r.Entities {
		g := api.Group("/" + h.Entity())
		h.Register(g, r.Guard)
		if h.Entity() == "Bank" && r.Logos != nil {
			r.Logos.Register(g, r.Guard)
		}
	}

	if r.Events != nil {
		e.GET("/ws", r.Events.HandleWS)
	}
}
