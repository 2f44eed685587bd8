package utils

import (
	"github.com/labstack/echo/v4"

	"inventory-system/internal/entities"
	"inventory-system/pkg/contextkeys"
	apperrors "inventory-system/pkg/errors"
)

// GetActorFromCtx возвращает данные аутентифицированного пользователя,
// положенные в контекст middleware-ом авторизации.
func GetActorFromCtx(ctx echo.Context) (entities.Actor, error) {
	userID, ok := ctx.Get(string(contextkeys.UserIDKey)).(uint64)
	if !ok || userID == 0 {
		return entities.Actor{}, apperrors.ErrUserIDNotFoundInContext
	}

	role, ok := ctx.Get(string(contextkeys.UserRoleKey)).(entities.Role)
	if !ok || !role.Valid() {
		return entities.Actor{}, apperrors.ErrUserIDNotFoundInContext
	}

	fullName, _ := ctx.Get(string(contextkeys.UserNameKey)).(string)

	return entities.Actor{
		ID:       userID,
		Role:     role,
		FullName: fullName,
	}, nil
}
