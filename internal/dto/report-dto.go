package dto

import "github.com/aarondl/null/v8"

// InventoryReportRowDTO - строка сводного отчёта по складу.
type InventoryReportRowDTO struct {
	DeviceID           uint64      `json:"id"`
	Barcode            string      `json:"barcode"`
	Name               string      `json:"device_name"`
	Type               string      `json:"device_type"`
	Brand              null.String `json:"brand"`
	Model              null.String `json:"model"`
	Status             string      `json:"status"`
	Location           null.String `json:"location"`
	BaselineQuantity   int64       `json:"baseline_quantity"`
	MinimumQuantity    int64       `json:"minimum_quantity"`
	TotalAdded         int64       `json:"total_added"`
	TotalRemoved       int64       `json:"total_removed"`
	CalculatedQuantity int64       `json:"calculated_quantity"`
}

type InventoryReportStatsDTO struct {
	TotalDevices      int   `json:"total_devices"`
	TotalQuantity     int64 `json:"total_quantity"`
	LowStockDevices   int   `json:"low_stock_devices"`
	OutOfStockDevices int   `json:"out_of_stock_devices"`
	AvailableDevices  int   `json:"available_devices"`
	AssignedDevices   int   `json:"assigned_devices"`
}

type InventoryReportDTO struct {
	Devices     []InventoryReportRowDTO `json:"devices"`
	Statistics  InventoryReportStatsDTO `json:"statistics"`
	GeneratedAt string                  `json:"generated_at"`
	GeneratedBy string                  `json:"generated_by"`
}

// EmployeeOperationsRowDTO - агрегат операций по сотруднику.
type EmployeeOperationsRowDTO struct {
	UserID               uint64      `json:"user_id"`
	FullName             string      `json:"full_name"`
	Username             string      `json:"username"`
	Department           null.String `json:"department"`
	TotalOperations      int64       `json:"total_operations"`
	AddOperations        int64       `json:"add_operations"`
	RemoveOperations     int64       `json:"remove_operations"`
	PendingOperations    int64       `json:"pending_operations"`
	ApprovedOperations   int64       `json:"approved_operations"`
	RejectedOperations   int64       `json:"rejected_operations"`
	TotalAddedQuantity   int64       `json:"total_added_quantity"`
	TotalRemovedQuantity int64       `json:"total_removed_quantity"`
}

type MostUsedDeviceRowDTO struct {
	DeviceID        uint64 `json:"device_id"`
	Name            string `json:"device_name"`
	Barcode         string `json:"barcode"`
	OperationsCount int64  `json:"operations_count"`
	TotalQuantity   int64  `json:"total_quantity"`
}

type DailyOperationsRowDTO struct {
	Day              string `json:"day"`
	TotalOperations  int64  `json:"total_operations"`
	AddOperations    int64  `json:"add_operations"`
	RemoveOperations int64  `json:"remove_operations"`
}

type ReportFilterDTO struct {
	DateFrom   string
	DateTo     string
	DeviceType string
	Status     string
	UserID     uint64
	Limit      uint64
}

// InventoryStatsDTO - сводка для дашборда, кешируется в Redis.
type InventoryStatsDTO struct {
	TotalDevices      int64 `json:"total_devices"`
	AvailableDevices  int64 `json:"available_devices"`
	AssignedDevices   int64 `json:"assigned_devices"`
	PendingOperations int64 `json:"pending_operations"`
	TodayOperations   int64 `json:"today_operations"`
	LowStockDevices   int64 `json:"low_stock_devices"`
}
