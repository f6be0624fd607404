// internal/app/router.go
package app

import (
	adminUserHandler "lexsite-service/internal/handlers/adminuser"
	authHandler "lexsite-service/internal/handlers/auth"
	blogHandler "lexsite-service/internal/handlers/blog"
	jobHandler "lexsite-service/internal/handlers/job"
	tagHandler "lexsite-service/internal/handlers/tag"
	wsHandler "lexsite-service/internal/handlers/websocket"
	"lexsite-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	AuthHandler      *authHandler.AuthHandler
	BlogHandler      *blogHandler.BlogHandler
	JobHandler       *jobHandler.JobHandler
	TagHandler       *tagHandler.TagHandler
	AdminUserHandler *adminUserHandler.AdminUserHandler
	WSHandler        *wsHandler.WebSocketHandler
	AuthMiddleware   *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== WebSocket ====================
	// One connection per open admin tab; session-ended and navigate
	// events are pushed here.
	r.GET("/ws", h.AuthMiddleware.Auth(), h.WSHandler.HandleConnection)

	// ==================== Public Auth Routes ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/login", h.AuthHandler.Login)
		// Retry takes the bearer token itself: an error-state session
		// would never get through the auth middleware.
		authPublic.POST("/session/retry", h.AuthHandler.Retry)
	}

	// ==================== Authenticated Auth Routes ====================
	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.POST("/logout", h.AuthHandler.Logout)
		authProtected.GET("/session", h.AuthHandler.Session)
		authProtected.POST("/session/refresh", h.AuthHandler.Refresh)
	}

	// ==================== Blogs ====================
	blogs := api.Group("/blogs")
	{
		// Public endpoints - no auth required
		blogs.GET("", h.BlogHandler.List)
		blogs.GET("/:id", h.BlogHandler.Get)

		// Admin endpoints
		blogsAdmin := blogs.Group("")
		blogsAdmin.Use(h.AuthMiddleware.Auth(), h.AuthMiddleware.AdminOnly())
		{
			blogsAdmin.POST("", h.BlogHandler.Create)
			blogsAdmin.PATCH("/:id", h.BlogHandler.Update)
			blogsAdmin.DELETE("/:id", h.BlogHandler.Delete)
		}
	}

	// ==================== Jobs ====================
	jobs := api.Group("/jobs")
	{
		jobs.GET("", h.JobHandler.List)
		jobs.GET("/:id", h.JobHandler.Get)

		jobsAdmin := jobs.Group("")
		jobsAdmin.Use(h.AuthMiddleware.Auth(), h.AuthMiddleware.AdminOnly())
		{
			jobsAdmin.POST("", h.JobHandler.Create)
			jobsAdmin.PATCH("/:id", h.JobHandler.Update)
			jobsAdmin.DELETE("/:id", h.JobHandler.Delete)
		}
	}

	// ==================== Tags ====================
	tags := api.Group("/tags")
	{
		tags.GET("", h.TagHandler.List)

		tagsAdmin := tags.Group("")
		tagsAdmin.Use(h.AuthMiddleware.Auth(), h.AuthMiddleware.AdminOnly())
		{
			tagsAdmin.POST("", h.TagHandler.Create)
			tagsAdmin.DELETE("/:id", h.TagHandler.Delete)
		}
	}

	// ==================== Admin Users ====================
	adminUsers := api.Group("/admin-users")
	adminUsers.Use(h.AuthMiddleware.Auth(), h.AuthMiddleware.SuperAdminOnly())
	{
		adminUsers.GET("", h.AdminUserHandler.List)
		adminUsers.GET("/:id", h.AdminUserHandler.Get)
		adminUsers.POST("", h.AdminUserHandler.Create)
		adminUsers.PATCH("/:id", h.AdminUserHandler.Update)
		adminUsers.DELETE("/:id", h.AdminUserHandler.Delete)
	}

	logger.Info("routes registered")
}
