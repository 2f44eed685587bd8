package constants

//============== CACHE KEYS ==============

const (
	// Ключ для кеша сводной статистики склада.
	CacheKeyInventoryStats = "inventory_stats"

	// Ключ для подсчета неудачных попыток входа.
	// Формат: login_attempts:<username> -> count
	CacheKeyLoginAttempts = "login_attempts:%s"

	// Ключ, указывающий, что аккаунт заблокирован из-за неудачных попыток входа.
	// Формат: lockout:<username> -> "locked"
	CacheKeyLockout = "lockout:%s"
)

//============== ACTIVITY ACTIONS ==============

const (
	ActionOperationCreated  = "inventory_operation_created"
	ActionOperationApproved = "operation_approved"
	ActionOperationRejected = "operation_rejected"
	ActionManualStockAdded  = "manual_stock_added"
	ActionManualStockRemove = "manual_stock_removed"
	ActionDeviceAdded       = "device_added"
	ActionDeviceUpdated     = "device_updated"
	ActionDeviceDeleted     = "device_deleted"
	ActionDeviceSearched    = "device_searched"
	ActionUserCreated       = "user_created"
	ActionUserUpdated       = "user_updated"
	ActionUserDeleted       = "user_deleted"
	ActionPasswordReset     = "password_reset"
	ActionPasswordChanged   = "password_changed"
	ActionLogin             = "login"
	ActionFailedLogin       = "failed_login"
	ActionLogout            = "logout"
	ActionReportGenerated   = "inventory_report_generated"
)

//============== PRIMARY ADMIN ==============

// PrimaryAdminID - главный администратор, создаваемый сидером первым.
// Его нельзя удалить.
const PrimaryAdminID uint64 = 1
