package dto

import "github.com/aarondl/null/v8"

type CreateDeviceDTO struct {
	Barcode          string       `json:"barcode" validate:"required"`
	Name             string       `json:"device_name" validate:"required"`
	Type             string       `json:"device_type" validate:"required"`
	Brand            null.String  `json:"brand"`
	Model            null.String  `json:"model"`
	SerialNumber     null.String  `json:"serial_number"`
	Description      null.String  `json:"description"`
	PurchaseDate     null.Time    `json:"purchase_date"`
	PurchasePrice    null.Float64 `json:"purchase_price"`
	WarrantyExpiry   null.Time    `json:"warranty_expiry"`
	Location         null.String  `json:"location"`
	BaselineQuantity *int64       `json:"baseline_quantity" validate:"omitempty,gte=0"`
	MinimumQuantity  *int64       `json:"minimum_quantity" validate:"omitempty,gte=0"`
}

// UpdateDeviceDTO - частичное обновление: nil-поля сохраняют прежние значения.
type UpdateDeviceDTO struct {
	Name             *string      `json:"device_name"`
	Type             *string      `json:"device_type"`
	Brand            null.String  `json:"brand"`
	Model            null.String  `json:"model"`
	SerialNumber     null.String  `json:"serial_number"`
	Description      null.String  `json:"description"`
	PurchaseDate     null.Time    `json:"purchase_date"`
	PurchasePrice    null.Float64 `json:"purchase_price"`
	WarrantyExpiry   null.Time    `json:"warranty_expiry"`
	Location         null.String  `json:"location"`
	Status           *string      `json:"status"`
	BaselineQuantity *int64       `json:"baseline_quantity"`
	MinimumQuantity  *int64       `json:"minimum_quantity"`
}

// DeviceDTO - устройство вместе с рассчитанным остатком.
type DeviceDTO struct {
	ID                 uint64       `json:"id"`
	Barcode            string       `json:"barcode"`
	Name               string       `json:"device_name"`
	Type               string       `json:"device_type"`
	Brand              null.String  `json:"brand"`
	Model              null.String  `json:"model"`
	SerialNumber       null.String  `json:"serial_number"`
	Description        null.String  `json:"description"`
	PurchaseDate       null.Time    `json:"purchase_date"`
	PurchasePrice      null.Float64 `json:"purchase_price"`
	WarrantyExpiry     null.Time    `json:"warranty_expiry"`
	Location           null.String  `json:"location"`
	Status             string       `json:"status"`
	BaselineQuantity   int64        `json:"baseline_quantity"`
	MinimumQuantity    int64        `json:"minimum_quantity"`
	CalculatedQuantity int64        `json:"calculated_quantity"`
	CreatedAt          string       `json:"created_at"`
}

type DeviceListFilterDTO struct {
	Search string
	Status string
	Type   string
}
