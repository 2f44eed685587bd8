package routes

import (
	"github.com/labstack/echo/v4"

	"inventory-system/internal/controllers"
)

func runDeviceRouter(secureGroup *echo.Group, adminGroup *echo.Group, ctrl *controllers.DeviceController) {
	secureGroup.GET("/devices", ctrl.GetAll)
	secureGroup.GET("/devices/:id", ctrl.GetByID)
	secureGroup.GET("/devices/barcode/:barcode", ctrl.GetByBarcode)

	adminGroup.POST("/devices", ctrl.Create)
	adminGroup.PUT("/devices/:id", ctrl.Update)
	adminGroup.DELETE("/devices/:id", ctrl.Delete)
}
