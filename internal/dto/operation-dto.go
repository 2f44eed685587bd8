package dto

import "github.com/aarondl/null/v8"

// SubmitOperationDTO - заявка на складскую операцию. Устройство указывается
// либо по id, либо по штрих-коду.
type SubmitOperationDTO struct {
	DeviceID uint64      `json:"device_id"`
	Barcode  string      `json:"barcode"`
	Type     string      `json:"operation_type" validate:"required"`
	Quantity int64       `json:"quantity"`
	Reason   null.String `json:"reason"`
	Notes    null.String `json:"notes"`
	Location null.String `json:"location"`
}

// ManualAdjustDTO - ручная корректировка; тип операции задаётся маршрутом.
type ManualAdjustDTO struct {
	DeviceID uint64      `json:"device_id"`
	Barcode  string      `json:"barcode"`
	Quantity int64       `json:"quantity"`
	Reason   null.String `json:"reason"`
	Notes    null.String `json:"notes"`
	Location null.String `json:"location"`
}

type ResolveOperationDTO struct {
	Notes null.String `json:"notes"`
}

// OperationDTO - запись журнала с присоединёнными данными устройства и людей.
type OperationDTO struct {
	ID             uint64      `json:"id"`
	DeviceID       uint64      `json:"device_id"`
	DeviceName     string      `json:"device_name"`
	Barcode        string      `json:"barcode"`
	DeviceType     string      `json:"device_type"`
	UserID         uint64      `json:"user_id"`
	UserName       string      `json:"user_name"`
	Type           string      `json:"operation_type"`
	Quantity       int64       `json:"quantity"`
	Reason         null.String `json:"reason"`
	Notes          null.String `json:"notes"`
	Location       null.String `json:"location"`
	Status         string      `json:"status"`
	ApprovedByName null.String `json:"approved_by_name"`
	ApprovalDate   null.String `json:"approval_date"`
	OperationDate  string      `json:"operation_date"`
}

// OperationResultDTO - ответ на создание операции.
type OperationResultDTO struct {
	OperationID       uint64         `json:"operation_id"`
	Status            string         `json:"status"`
	Device            ShortDeviceDTO `json:"device"`
	AvailableQuantity null.Int64     `json:"available_quantity,omitempty"`
}

type ShortDeviceDTO struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	Barcode string `json:"barcode"`
}

// OperationListFilterDTO - фильтры списка операций. UserID подставляется
// принудительно для не-администраторов.
type OperationListFilterDTO struct {
	UserID   uint64
	DeviceID uint64
	Type     string
	Status   string
	DateFrom string
	DateTo   string
}
