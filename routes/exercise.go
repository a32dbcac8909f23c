package routes

import (
	"github.com/gin-gonic/gin"

	"powerpulse/controllers"
)

// SetupExerciseRoutes registers catalog reads for authenticated users and
// catalog writes for admins
func SetupExerciseRoutes(auth, admin *gin.RouterGroup) {
	auth.GET("/exercises", controllers.ListExercises)
	auth.GET("/exercises/:id", controllers.GetExercise)
	auth.GET("/exercise-types", controllers.ListExerciseTypes)
	auth.GET("/exercise-types/:id", controllers.GetExerciseType)

	admin.POST("/exercises", controllers.CreateExercise)
	admin.PUT("/exercises/:id", controllers.UpdateExercise)
	admin.DELETE("/exercises/:id", controllers.DeleteExercise)

	admin.POST("/exercise-types", controllers.CreateExerciseType)
	admin.PUT("/exercise-types/:id", controllers.UpdateExerciseType)
	admin.DELETE("/exercise-types/:id", controllers.DeleteExerciseType)
}
