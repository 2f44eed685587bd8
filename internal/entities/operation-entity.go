package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// OperationType - закрытый тип операции журнала.
type OperationType string

const (
	OperationAdd    OperationType = "add"
	OperationRemove OperationType = "remove"
)

func (t OperationType) Valid() bool {
	return t == OperationAdd || t == OperationRemove
}

// SignedQuantity возвращает вклад операции в свёртку: +q для add, -q для remove.
func (t OperationType) SignedQuantity(q int64) int64 {
	if t == OperationRemove {
		return -q
	}
	return q
}

// OperationStatus - статус записи журнала. Переходы только
// pending -> approved и pending -> rejected; терминальные статусы финальны.
type OperationStatus string

const (
	OperationPending  OperationStatus = "pending"
	OperationApproved OperationStatus = "approved"
	OperationRejected OperationStatus = "rejected"
)

func (s OperationStatus) Valid() bool {
	switch s {
	case OperationPending, OperationApproved, OperationRejected:
		return true
	}
	return false
}

func (s OperationStatus) Terminal() bool {
	return s == OperationApproved || s == OperationRejected
}

// Operation - запись журнала складских операций. Создаётся один раз,
// после создания меняются только статус и поля утверждения.
type Operation struct {
	ID            uint64
	DeviceID      uint64
	UserID        uint64
	Type          OperationType
	Quantity      int64
	Reason        null.String
	Notes         null.String
	Location      null.String
	Status        OperationStatus
	ApprovedBy    null.Uint64
	ApprovalDate  null.Time
	OperationDate time.Time
}
