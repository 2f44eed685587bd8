package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/services"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/utils"
)

type DeviceController struct {
	deviceService services.DeviceServiceInterface
	logger        *zap.Logger
}

func NewDeviceController(deviceService services.DeviceServiceInterface, logger *zap.Logger) *DeviceController {
	return &DeviceController{deviceService: deviceService, logger: logger}
}

func (c *DeviceController) GetAll(ctx echo.Context) error {
	filter := utils.ParseFilter(ctx)
	deviceFilter := dto.DeviceListFilterDTO{
		Search: ctx.QueryParam("search"),
		Status: ctx.QueryParam("status"),
		Type:   ctx.QueryParam("device_type"),
	}

	list, total, err := c.deviceService.GetDevices(ctx.Request().Context(), filter, deviceFilter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, list, "Список устройств получен", http.StatusOK, total)
}

func (c *DeviceController) GetByID(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	device, err := c.deviceService.FindDevice(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, device, "Устройство найдено", http.StatusOK)
}

// GetByBarcode - поиск по штрих-коду, основной путь сканера.
func (c *DeviceController) GetByBarcode(ctx echo.Context) error {
	actor, err := utils.GetActorFromCtx(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	barcode := ctx.Param("barcode")
	if barcode == "" {
		return utils.ErrorResponse(ctx, apperrors.NewInvalidInputError("штрих-код не указан"), c.logger)
	}

	device, err := c.deviceService.FindDeviceByBarcode(ctx.Request().Context(), actor, barcode)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, device, "Устройство найдено", http.StatusOK)
}

func (c *DeviceController) Create(ctx echo.Context) error {
	actor, err := utils.GetActorFromCtx(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.CreateDeviceDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.ErrBadRequest, c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	device, err := c.deviceService.CreateDevice(ctx.Request().Context(), actor, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, device, "Устройство создано", http.StatusCreated)
}

func (c *DeviceController) Update(ctx echo.Context) error {
	actor, err := utils.GetActorFromCtx(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateDeviceDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.ErrBadRequest, c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	device, err := c.deviceService.UpdateDevice(ctx.Request().Context(), actor, id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, device, "Устройство обновлено", http.StatusOK)
}

func (c *DeviceController) Delete(ctx echo.Context) error {
	actor, err := utils.GetActorFromCtx(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.deviceService.DeleteDevice(ctx.Request().Context(), actor, id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Устройство удалено", http.StatusOK)
}
