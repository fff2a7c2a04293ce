package routes

import (
	"github.com/gin-gonic/gin"

	"civix-be/controllers"
	"civix-be/middlewares"
)

// AuthRoutes sets up the authentication routes
func AuthRoutes(r *gin.Engine) {
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", controllers.RegisterUser)
		auth.POST("/login", controllers.LoginUser)
		auth.GET("/me", middlewares.AuthMiddleware(), controllers.GetMe)
		auth.POST("/logout", middlewares.AuthMiddleware(), controllers.LogoutUser)
	}
}
