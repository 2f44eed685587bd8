package utils

import (
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/types"
)

const (
	defaultLimit = 20
	maxLimit     = 200
)

// ParseFilter собирает общие параметры списков из query string.
func ParseFilter(ctx echo.Context) types.Filter {
	filter := types.Filter{
		Search: ctx.QueryParam("search"),
		Limit:  defaultLimit,
		Page:   1,
	}

	if raw := ctx.QueryParam("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			if limit > maxLimit {
				limit = maxLimit
			}
			filter.Limit = limit
		}
	}

	if raw := ctx.QueryParam("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 0 {
			filter.Page = page
		}
	}

	filter.Offset = (filter.Page - 1) * filter.Limit
	filter.WithPagination = ctx.QueryParam("with_pagination") == "true"

	return filter
}

func ParseIDParam(ctx echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewInvalidInputError("некорректный параметр %q", name)
	}
	return id, nil
}

func ParseQueryUint(ctx echo.Context, name string) uint64 {
	value, err := strconv.ParseUint(ctx.QueryParam(name), 10, 64)
	if err != nil {
		return 0
	}
	return value
}
