package errors

import "fmt"

var (
	// JWT и токены
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")
	ErrTokenIsNotAccess     = fmt.Errorf("токен не является access-токеном")

	// Авторизация
	ErrEmptyAuthHeader    = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader  = fmt.Errorf("неверный формат заголовка авторизации")
	ErrInvalidCredentials = fmt.Errorf("неверные учётные данные")
	ErrUnauthorized       = fmt.Errorf("неавторизован")
	ErrForbidden          = fmt.Errorf("доступ запрещён")
	ErrAccountLocked      = fmt.Errorf("учётная запись временно заблокирована из-за неудачных попыток входа")

	// Контекст
	ErrUserIDNotFoundInContext = fmt.Errorf("UserID не найден в контексте запроса")

	// Общие
	ErrNotFound   = fmt.Errorf("запись не найдена")
	ErrBadRequest = fmt.Errorf("неверный запрос")

	// Домен инвентаря
	ErrDeviceNotFound         = fmt.Errorf("устройство не найдено")
	ErrOperationNotFound      = fmt.Errorf("операция не найдена")
	ErrDuplicateBarcode       = fmt.Errorf("штрих-код уже существует")
	ErrDuplicateUsername      = fmt.Errorf("имя пользователя уже существует")
	ErrInvalidOperationType   = fmt.Errorf("тип операции должен быть add или remove")
	ErrNotApprovable          = fmt.Errorf("операция уже обработана")
	ErrHasDependentOperations = fmt.Errorf("удаление невозможно: есть связанные операции")
	ErrSelfDelete             = fmt.Errorf("нельзя удалить собственную учётную запись")
	ErrPrimaryAdminImmutable  = fmt.Errorf("нельзя удалить главного администратора")
)

// InvalidInputError - ошибка валидации входных данных (отсутствующее поле,
// некорректная величина и т.п.).
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func NewInvalidInputError(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

// InsufficientQuantityError несёт рассчитанный доступный остаток,
// чтобы сообщение могло его показать.
type InsufficientQuantityError struct {
	Requested int64
	Available int64
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf("недостаточно остатка: запрошено %d, доступно %d", e.Requested, e.Available)
}

func NewInsufficientQuantityError(requested, available int64) error {
	return &InsufficientQuantityError{Requested: requested, Available: available}
}

// StorageError оборачивает сбой слоя персистентности при основной мутации.
// Вызывающая сторона обязана считать операцию незавершённой.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("ошибка хранилища (%s): %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
