package routes

import (
	"github.com/labstack/echo/v4"

	"inventory-system/internal/controllers"
)

// Управление пользователями доступно только администраторам.
func runUserRouter(adminGroup *echo.Group, ctrl *controllers.UserController) {
	adminGroup.GET("/users", ctrl.GetAll)
	adminGroup.GET("/users/:id", ctrl.GetByID)
	adminGroup.POST("/users", ctrl.Create)
	adminGroup.PUT("/users/:id", ctrl.Update)
	adminGroup.DELETE("/users/:id", ctrl.Delete)
	adminGroup.POST("/users/:id/reset-password", ctrl.ResetPassword)
}
