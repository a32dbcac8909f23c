package routes

import (
	"github.com/gin-gonic/gin"

	"powerpulse/controllers"
)

// SetupNotificationRoutes registers the inbox routes
func SetupNotificationRoutes(auth *gin.RouterGroup) {
	auth.GET("/notifications", controllers.ListNotifications)
	auth.GET("/notifications/unread-count", controllers.UnreadNotificationsCount)
	auth.POST("/notifications/:id/read", controllers.MarkNotificationRead)
	auth.POST("/notifications/read-all", controllers.MarkAllNotificationsRead)
	auth.DELETE("/notifications/:id", controllers.DeleteNotification)
}
