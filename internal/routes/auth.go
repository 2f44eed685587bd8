package routes

import (
	"github.com/labstack/echo/v4"

	"inventory-system/internal/controllers"
)

func runAuthRouter(publicGroup *echo.Group, secureGroup *echo.Group, ctrl *controllers.AuthController) {
	publicGroup.POST("/auth/login", ctrl.Login)
	publicGroup.POST("/auth/refresh", ctrl.Refresh)

	secureGroup.GET("/auth/me", ctrl.Me)
	secureGroup.POST("/auth/change-password", ctrl.ChangePassword)
	secureGroup.POST("/auth/logout", ctrl.Logout)
}
