package routes

import (
	"github.com/gin-gonic/gin"

	"civix-be/controllers"
	"civix-be/lifecycle"
	"civix-be/middlewares"
	"civix-be/models"
)

// IssueRoutes sets up the issue routes
func IssueRoutes(r *gin.Engine) {
	issues := r.Group("/api/issues", middlewares.AuthMiddleware())
	{
		issues.POST("",
			middlewares.RequireRole(models.Citizen),
			middlewares.IssueRateLimiter(5),
			controllers.CreateIssue)
		issues.GET("", middlewares.RequireRole(), controllers.ListIssues)
		issues.GET("/escalated",
			middlewares.RequireRole(models.President),
			controllers.EscalatedIssues)
		issues.GET("/overdue",
			middlewares.RequireRole(models.Corporator, models.President),
			controllers.OverdueIssues)
		issues.GET("/:id", middlewares.RequireRole(), controllers.GetIssue)

		handlers := middlewares.RequireRole(models.Corporator, models.President)
		issues.PATCH("/:id/accept", handlers, controllers.TransitionIssue(lifecycle.Accept))
		issues.PATCH("/:id/resolve", handlers, controllers.TransitionIssue(lifecycle.Resolve))
		issues.PATCH("/:id/escalate", handlers, controllers.TransitionIssue(lifecycle.Escalate))

		president := middlewares.RequireRole(models.President)
		issues.PATCH("/:id/reassign", president, controllers.TransitionIssue(lifecycle.Reassign))
		issues.PATCH("/:id/direct-resolve", president, controllers.TransitionIssue(lifecycle.DirectResolve))
	}
}
