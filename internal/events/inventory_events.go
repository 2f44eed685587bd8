package events

import (
	"inventory-system/internal/entities"
)

// OperationSubmittedEvent возникает после фиксации новой операции в журнале.
// Operation уже сохранена; Device - снимок на момент фиксации.
type OperationSubmittedEvent struct {
	Operation entities.Operation
	Device    entities.Device
	Actor     entities.Actor
	// AutoApproved - операция администратора, утверждена при создании.
	AutoApproved bool
}

func (e OperationSubmittedEvent) Name() string {
	return "inventory.operation.submitted"
}

// OperationResolvedEvent возникает после перевода операции в терминальный статус.
type OperationResolvedEvent struct {
	Operation entities.Operation
	Device    entities.Device
	Actor     entities.Actor
}

func (e OperationResolvedEvent) Name() string {
	return "inventory.operation.resolved"
}

// DeviceChangedEvent возникает при создании, изменении и удалении устройства.
type DeviceChangedEvent struct {
	Action    string
	DeviceID  uint64
	Actor     entities.Actor
	OldValues []byte
	NewValues []byte
}

func (e DeviceChangedEvent) Name() string {
	return "inventory.device.changed"
}

// UserChangedEvent возникает при административных действиях над пользователями
// и при событиях входа/выхода.
type UserChangedEvent struct {
	Action   string
	TargetID uint64
	Actor    entities.Actor
}

func (e UserChangedEvent) Name() string {
	return "inventory.user.changed"
}

// ReportGeneratedEvent возникает после формирования отчёта.
type ReportGeneratedEvent struct {
	ReportType string
	Actor      entities.Actor
}

func (e ReportGeneratedEvent) Name() string {
	return "inventory.report.generated"
}
