package routes

import (
	"github.com/labstack/echo/v4"

	"inventory-system/internal/controllers"
)

func runNotificationRouter(secureGroup *echo.Group, ctrl *controllers.NotificationController) {
	secureGroup.GET("/notifications", ctrl.GetAll)
	secureGroup.GET("/notifications/unread-count", ctrl.UnreadCount)
	secureGroup.POST("/notifications/:id/read", ctrl.MarkRead)
	secureGroup.POST("/notifications/read-all", ctrl.MarkAllRead)
}
