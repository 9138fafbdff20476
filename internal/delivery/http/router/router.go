// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"conectar/internal/delivery/http/middleware"
	"conectar/internal/delivery/http/router/handler"
	"conectar/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler    *handler.AuthHandler
	userHandler    *handler.UserHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		userHandler:    params.UserHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Auth routes
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/refresh", r.authHandler.Refresh)
		authGroup.POST("/logout", r.authHandler.Logout, r.authMiddleware.Authenticate)
		authGroup.GET("/google/login", r.authHandler.GoogleLogin)
		authGroup.GET("/google/callback", r.authHandler.GoogleCallback)
		authGroup.POST("/google", r.authHandler.GoogleToken)
	}

	// Registration is open; everything else under /users needs a token.
	userGroup := e.Group("/users")
	userGroup.POST("", r.userHandler.Create)

	// Self-service profile routes, open to every authenticated role.
	// Registered before the /:id routes so "profile" never matches as an id.
	profileGroup := userGroup.Group("/profile")
	profileGroup.Use(r.authMiddleware.Authenticate)
	profileGroup.Use(r.authMiddleware.RequireRoles(entity.RoleUser, entity.RoleAdmin))
	{
		profileGroup.GET("", r.userHandler.GetProfile)
		profileGroup.PATCH("", r.userHandler.UpdateProfile)
		profileGroup.PATCH("/password", r.userHandler.ChangePassword)
	}

	// Administrative user management.
	adminGroup := userGroup.Group("")
	adminGroup.Use(r.authMiddleware.Authenticate)
	adminGroup.Use(r.authMiddleware.RequireRoles(entity.RoleAdmin))
	{
		adminGroup.GET("", r.userHandler.FindAll)
		adminGroup.GET("/inactive", r.userHandler.FindAllInactive)
		adminGroup.GET("/:id", r.userHandler.FindOne)
		adminGroup.PATCH("/:id", r.userHandler.Update)
		adminGroup.PATCH("/:id/password", r.userHandler.ResetPassword)
		adminGroup.DELETE("/:id", r.userHandler.Remove)
	}
}
