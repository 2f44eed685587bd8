package routes

import (
	"github.com/labstack/echo/v4"

	"inventory-system/internal/controllers"
)

func runReportRouter(secureGroup *echo.Group, adminGroup *echo.Group, ctrl *controllers.ReportController) {
	// Сводка дашборда видна всем аутентифицированным.
	secureGroup.GET("/stats", ctrl.Stats)

	adminGroup.GET("/reports/inventory", ctrl.Inventory)
	adminGroup.GET("/reports/employee-operations", ctrl.EmployeeOperations)
	adminGroup.GET("/reports/most-used-devices", ctrl.MostUsedDevices)
	adminGroup.GET("/reports/daily-operations", ctrl.DailyOperations)
}
