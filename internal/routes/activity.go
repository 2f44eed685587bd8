package routes

import (
	"github.com/labstack/echo/v4"

	"inventory-system/internal/controllers"
)

func runActivityRouter(adminGroup *echo.Group, ctrl *controllers.ActivityController) {
	adminGroup.GET("/activity", ctrl.GetAll)
}
