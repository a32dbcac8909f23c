package routes

import (
	"github.com/gin-gonic/gin"

	"powerpulse/controllers"
)

// SetupUserRoutes registers the profile and progress routes
func SetupUserRoutes(public, auth *gin.RouterGroup) {
	// Called by the client right after provider sign-in; the provider
	// token is the caller's proof, verified upstream of this service
	public.POST("/users/sync", controllers.SyncUser)

	auth.GET("/users/me", controllers.Me)
	auth.PUT("/users/me/profile", controllers.UpdateProfile)
	auth.DELETE("/users/me", controllers.DeleteUser)

	auth.POST("/exercises/:id/complete", controllers.CompleteExercise)
	auth.GET("/leaderboard", controllers.GetLeaderboard)
}
