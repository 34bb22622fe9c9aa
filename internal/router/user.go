package router

import "github.com/gin-gonic/gin"

func (r *Router) userRoutes(version *gin.RouterGroup) {
	users := version.Group("/users")
	{
		// All user routes require JWT authentication
		users.Use(r.jwtMw.RequireAuth())
		{
			// Paginated list; include_deleted=true also returns soft-deleted rows
			users.GET("", r.userHandler.GetAll)
			users.GET("/:id", r.userHandler.GetByID)
			users.POST("", r.userHandler.Create)
			users.PUT("/:id", r.userHandler.Update)

			// Requires the current password when one is set
			users.PUT("/:id/password", r.userHandler.UpdatePassword)

			// Soft delete; a user cannot delete themselves
			users.DELETE("/:id", r.userHandler.Delete)
			users.POST("/:id/restore", r.userHandler.Restore)

			// Presigned S3 URLs for the avatar image
			users.GET("/:id/avatar", r.userHandler.GetAvatar)
			users.POST("/:id/avatar", r.userHandler.CreateAvatarUpload)
		}
	}
}

func (r *Router) sessionRoutes(version *gin.RouterGroup) {
	session := version.Group("/session")
	session.Use(r.jwtMw.RequireAuth())
	{
		session.GET("/header", r.userHandler.Header)
	}
}
