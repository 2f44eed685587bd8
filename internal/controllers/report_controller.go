package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/services"
	"inventory-system/pkg/utils"
)

var inventoryReportHeaders = []interface{}{
	"Штрих-код", "Наименование", "Тип", "Бренд", "Модель", "Статус",
	"Расположение", "Базовое кол-во", "Мин. кол-во", "Приход", "Расход", "Остаток",
}

type ReportController struct {
	reportService services.ReportServiceInterface
	logger        *zap.Logger
}

func NewReportController(reportService services.ReportServiceInterface, logger *zap.Logger) *ReportController {
	return &ReportController{reportService: reportService, logger: logger}
}

func (c *ReportController) parseFilter(ctx echo.Context) dto.ReportFilterDTO {
	return dto.ReportFilterDTO{
		DateFrom:   ctx.QueryParam("date_from"),
		DateTo:     ctx.QueryParam("date_to"),
		DeviceType: ctx.QueryParam("device_type"),
		Status:     ctx.QueryParam("status"),
		UserID:     utils.ParseQueryUint(ctx, "user_id"),
		Limit:      utils.ParseQueryUint(ctx, "limit"),
	}
}

func (c *ReportController) Inventory(ctx echo.Context) error {
	actor, err := utils.GetActorFromCtx(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	report, err := c.reportService.InventoryReport(ctx.Request().Context(), actor, c.parseFilter(ctx))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if ctx.QueryParam("format") == "xlsx" {
		return c.respondWithXLSX(ctx, report.Devices)
	}

	return utils.SuccessResponse(ctx, report, "Отчёт по складу сформирован", http.StatusOK)
}

func (c *ReportController) respondWithXLSX(ctx echo.Context, rows []dto.InventoryReportRowDTO) error {
	f := excelize.NewFile()
	sheet := "Отчёт по складу"
	f.SetSheetName("Sheet1", sheet)
	f.SetSheetRow(sheet, "A1", &inventoryReportHeaders)
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, "A1", "L1", style)

	for i, item := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			item.Barcode, item.Name, item.Type, item.Brand.String, item.Model.String,
			item.Status, item.Location.String, item.BaselineQuantity, item.MinimumQuantity,
			item.TotalAdded, item.TotalRemoved, item.CalculatedQuantity,
		}
		f.SetSheetRow(sheet, cell, &row)
	}
	f.SetColWidth(sheet, "A", "B", 25)
	f.SetColWidth(sheet, "C", "G", 18)

	fileName := fmt.Sprintf("inventory_report_%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set("Content-Disposition", "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}

func (c *ReportController) EmployeeOperations(ctx echo.Context) error {
	actor, err := utils.GetActorFromCtx(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	rows, err := c.reportService.EmployeeOperations(ctx.Request().Context(), actor, c.parseFilter(ctx))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, rows, "Отчёт по сотрудникам сформирован", http.StatusOK)
}

func (c *ReportController) MostUsedDevices(ctx echo.Context) error {
	actor, err := utils.GetActorFromCtx(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	rows, err := c.reportService.MostUsedDevices(ctx.Request().Context(), actor, utils.ParseQueryUint(ctx, "limit"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, rows, "Отчёт по популярным устройствам сформирован", http.StatusOK)
}

func (c *ReportController) DailyOperations(ctx echo.Context) error {
	actor, err := utils.GetActorFromCtx(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	rows, err := c.reportService.DailyOperations(ctx.Request().Context(), actor, c.parseFilter(ctx))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, rows, "Отчёт по дням сформирован", http.StatusOK)
}

func (c *ReportController) Stats(ctx echo.Context) error {
	stats, err := c.reportService.GetStats(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, stats, "Сводка получена", http.StatusOK)
}
