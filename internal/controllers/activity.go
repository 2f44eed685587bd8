package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/repositories"
	"inventory-system/pkg/utils"
)

// ActivityController отдаёт журнал действий. Доступен только администраторам,
// логики поверх репозитория нет, поэтому сервисного слоя здесь нет.
type ActivityController struct {
	activityRepo repositories.ActivityRepositoryInterface
	logger       *zap.Logger
}

func NewActivityController(activityRepo repositories.ActivityRepositoryInterface, logger *zap.Logger) *ActivityController {
	return &ActivityController{activityRepo: activityRepo, logger: logger}
}

func (c *ActivityController) GetAll(ctx echo.Context) error {
	filter := utils.ParseFilter(ctx)
	activityFilter := dto.ActivityListFilterDTO{
		UserID:   utils.ParseQueryUint(ctx, "user_id"),
		Action:   ctx.QueryParam("action"),
		DateFrom: ctx.QueryParam("date_from"),
		DateTo:   ctx.QueryParam("date_to"),
	}

	list, total, err := c.activityRepo.GetAll(ctx.Request().Context(), filter, activityFilter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, list, "Журнал действий получен", http.StatusOK, total)
}
