package routes

import (
	"github.com/labstack/echo/v4"

	"inventory-system/internal/controllers"
)

func runInventoryRouter(secureGroup *echo.Group, adminGroup *echo.Group, ctrl *controllers.InventoryController) {
	secureGroup.POST("/operations", ctrl.Submit)
	secureGroup.GET("/operations", ctrl.GetAll)
	secureGroup.GET("/operations/:id", ctrl.GetByID)
	secureGroup.GET("/devices/:id/quantity", ctrl.GetQuantity)
	secureGroup.POST("/stock/add", ctrl.ManualAdd)
	secureGroup.POST("/stock/remove", ctrl.ManualRemove)

	adminGroup.POST("/operations/:id/approve", ctrl.Approve)
	adminGroup.POST("/operations/:id/reject", ctrl.Reject)
}
