package routes

import (
	"github.com/gin-gonic/gin"

	"civix-be/controllers"
	"civix-be/middlewares"
)

// UserRoutes sets up the profile routes
func UserRoutes(r *gin.Engine) {
	user := r.Group("/api/user", middlewares.AuthMiddleware())
	{
		user.PUT("/profile", middlewares.RequireRole(), controllers.UpdateProfile)
	}
}
