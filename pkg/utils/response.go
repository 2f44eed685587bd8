package utils

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "inventory-system/pkg/errors"
)

type HttpResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
	Total   *uint64     `json:"total_count,omitempty"`
}

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int, total ...uint64) error {
	response := &HttpResponse{
		Status:  true,
		Body:    body,
		Message: message,
	}
	if len(total) > 0 {
		response.Total = &total[0]
	}
	return ctx.JSON(code, response)
}

// errorStatusList - соответствие сентинельных ошибок и HTTP-статусов.
var errorStatusList = map[error]int{
	apperrors.ErrEmptyAuthHeader:         http.StatusUnauthorized,
	apperrors.ErrInvalidAuthHeader:       http.StatusUnauthorized,
	apperrors.ErrInvalidToken:            http.StatusUnauthorized,
	apperrors.ErrTokenExpired:            http.StatusUnauthorized,
	apperrors.ErrTokenIsNotAccess:        http.StatusUnauthorized,
	apperrors.ErrInvalidCredentials:      http.StatusUnauthorized,
	apperrors.ErrUnauthorized:            http.StatusUnauthorized,
	apperrors.ErrUserIDNotFoundInContext: http.StatusUnauthorized,
	apperrors.ErrAccountLocked:           http.StatusLocked,
	apperrors.ErrForbidden:               http.StatusForbidden,
	apperrors.ErrSelfDelete:              http.StatusForbidden,
	apperrors.ErrPrimaryAdminImmutable:   http.StatusForbidden,
	apperrors.ErrNotFound:                http.StatusNotFound,
	apperrors.ErrDeviceNotFound:          http.StatusNotFound,
	apperrors.ErrOperationNotFound:       http.StatusNotFound,
	apperrors.ErrDuplicateBarcode:        http.StatusConflict,
	apperrors.ErrDuplicateUsername:       http.StatusConflict,
	apperrors.ErrHasDependentOperations:  http.StatusConflict,
	apperrors.ErrNotApprovable:           http.StatusBadRequest,
	apperrors.ErrInvalidOperationType:    http.StatusBadRequest,
	apperrors.ErrBadRequest:              http.StatusBadRequest,
}

func statusForError(err error) (int, string) {
	for sentinel, code := range errorStatusList {
		if errors.Is(err, sentinel) {
			return code, sentinel.Error()
		}
	}

	var invalidInput *apperrors.InvalidInputError
	if errors.As(err, &invalidInput) {
		return http.StatusBadRequest, invalidInput.Message
	}

	var insufficient *apperrors.InsufficientQuantityError
	if errors.As(err, &insufficient) {
		return http.StatusBadRequest, insufficient.Error()
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return http.StatusBadRequest, "ошибка валидации: " + validationErrs.Error()
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if msg, ok := httpErr.Message.(string); ok {
			return httpErr.Code, msg
		}
		return httpErr.Code, http.StatusText(httpErr.Code)
	}

	var storageErr *apperrors.StorageError
	if errors.As(err, &storageErr) {
		// Детали сбоя хранилища наружу не отдаём.
		return http.StatusInternalServerError, "внутренняя ошибка сервера"
	}

	return http.StatusInternalServerError, "внутренняя ошибка сервера"
}

func ErrorResponse(ctx echo.Context, err error, logger ...*zap.Logger) error {
	code, message := statusForError(err)

	if len(logger) > 0 && code >= http.StatusInternalServerError {
		logger[0].Error("внутренняя ошибка при обработке запроса",
			zap.String("uri", ctx.Request().RequestURI),
			zap.Error(err),
		)
	}

	return ctx.JSON(code, &HttpResponse{
		Status:  false,
		Body:    struct{}{},
		Message: message,
	})
}
