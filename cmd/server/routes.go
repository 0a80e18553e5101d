package main

import (
	"github.com/collabhub/backend/internal/middleware"
	"github.com/collabhub/backend/internal/models"
	"github.com/collabhub/backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	loginLimiter := middleware.NewRateLimiter(5, 10)

	r.GET("/health", svc.healthHandler.CheckHealth)

	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/auth/login", loginLimiter.Middleware(), svc.authHandler.Login)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.AuditLog())
		{
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)

			protected.GET("/users", svc.userHandler.List)

			protected.POST("/projects", svc.projectHandler.Create)
			protected.GET("/projects", svc.projectHandler.List)
			protected.GET("/projects/:id", svc.projectHandler.GetByID)

			// Collaborator reads (any authenticated user)
			protected.GET("/projects/:id/collaborators", svc.collabHandler.List)
			protected.GET("/projects/:id/collaborators/roles", svc.collabHandler.ListRoles)

			// Owner-only operations
			owner := protected.Group("", middleware.ProjectOwnerRequired(models.GetDB()))
			{
				owner.POST("/projects/:id/collaborators", svc.collabHandler.Add)
				owner.PUT("/projects/:id/collaborators/:userID", svc.collabHandler.ChangeRole)
				owner.DELETE("/projects/:id/collaborators/:userID", svc.collabHandler.Remove)
				owner.DELETE("/projects/:id", svc.projectHandler.Delete)
			}
		}

		// Admin only routes
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired(), middleware.AuditLog())
		{
			admin.POST("/users", svc.userHandler.Create)
			admin.GET("/system-logs", svc.logHandler.List)
		}
	}
}
