package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// DeviceStatus - закрытый тип статуса устройства.
type DeviceStatus string

const (
	DeviceAvailable   DeviceStatus = "available"
	DeviceAssigned    DeviceStatus = "assigned"
	DeviceMaintenance DeviceStatus = "maintenance"
	DeviceDamaged     DeviceStatus = "damaged"
	DeviceDisposed    DeviceStatus = "disposed"
)

func (s DeviceStatus) Valid() bool {
	switch s {
	case DeviceAvailable, DeviceAssigned, DeviceMaintenance, DeviceDamaged, DeviceDisposed:
		return true
	}
	return false
}

// Device - учётная карточка устройства. BaselineQuantity фиксируется при
// создании (или прямой правке администратором) и служит стартовым
// аккумулятором свёртки журнала; сами операции его не трогают.
type Device struct {
	ID               uint64
	Barcode          string
	Name             string
	Type             string
	Brand            null.String
	Model            null.String
	SerialNumber     null.String
	Description      null.String
	PurchaseDate     null.Time
	PurchasePrice    null.Float64
	WarrantyExpiry   null.Time
	Location         null.String
	Status           DeviceStatus
	BaselineQuantity int64
	MinimumQuantity  int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
