package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	"inventory-system/internal/services"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/utils"
)

type InventoryController struct {
	inventoryService services.InventoryServiceInterface
	logger           *zap.Logger
}

func NewInventoryController(inventoryService services.InventoryServiceInterface, logger *zap.Logger) *InventoryController {
	return &InventoryController{inventoryService: inventoryService, logger: logger}
}

// Submit принимает заявку на складскую операцию. Для администратора
// она утверждается сразу, для сотрудника встаёт в очередь согласования.
func (c *InventoryController) Submit(ctx echo.Context) error {
	actor, err := utils.GetActorFromCtx(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.SubmitOperationDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.ErrBadRequest, c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	result, err := c.inventoryService.SubmitOperation(ctx.Request().Context(), actor, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "Операция принята", http.StatusCreated)
}

func (c *InventoryController) manualAdjust(ctx echo.Context, opType entities.OperationType) error {
	actor, err := utils.GetActorFromCtx(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.ManualAdjustDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.ErrBadRequest, c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	result, err := c.inventoryService.ManualAdjust(ctx.Request().Context(), actor, opType, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "Корректировка выполнена", http.StatusCreated)
}

func (c *InventoryController) ManualAdd(ctx echo.Context) error {
	return c.manualAdjust(ctx, entities.OperationAdd)
}

func (c *InventoryController) ManualRemove(ctx echo.Context) error {
	return c.manualAdjust(ctx, entities.OperationRemove)
}

func (c *InventoryController) resolve(ctx echo.Context, approve bool) error {
	actor, err := utils.GetActorFromCtx(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.ResolveOperationDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.ErrBadRequest, c.logger)
	}

	var result *dto.OperationDTO
	var message string
	if approve {
		result, err = c.inventoryService.ApproveOperation(ctx.Request().Context(), actor, id, payload)
		message = "Операция утверждена"
	} else {
		result, err = c.inventoryService.RejectOperation(ctx.Request().Context(), actor, id, payload)
		message = "Операция отклонена"
	}
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, message, http.StatusOK)
}

func (c *InventoryController) Approve(ctx echo.Context) error {
	return c.resolve(ctx, true)
}

func (c *InventoryController) Reject(ctx echo.Context) error {
	return c.resolve(ctx, false)
}

func (c *InventoryController) GetByID(ctx echo.Context) error {
	actor, err := utils.GetActorFromCtx(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	result, err := c.inventoryService.GetOperation(ctx.Request().Context(), actor, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "Операция найдена", http.StatusOK)
}

func (c *InventoryController) GetAll(ctx echo.Context) error {
	actor, err := utils.GetActorFromCtx(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	filter := utils.ParseFilter(ctx)
	opFilter := dto.OperationListFilterDTO{
		UserID:   utils.ParseQueryUint(ctx, "user_id"),
		DeviceID: utils.ParseQueryUint(ctx, "device_id"),
		Type:     ctx.QueryParam("operation_type"),
		Status:   ctx.QueryParam("status"),
		DateFrom: ctx.QueryParam("date_from"),
		DateTo:   ctx.QueryParam("date_to"),
	}

	list, total, err := c.inventoryService.GetOperations(ctx.Request().Context(), actor, filter, opFilter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, list, "Список операций получен", http.StatusOK, total)
}

// GetQuantity возвращает рассчитанный остаток устройства.
func (c *InventoryController) GetQuantity(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	quantity, err := c.inventoryService.GetEffectiveQuantity(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	body := map[string]interface{}{
		"device_id":           id,
		"calculated_quantity": quantity,
	}
	return utils.SuccessResponse(ctx, body, "Остаток рассчитан", http.StatusOK)
}
