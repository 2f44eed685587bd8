package entities

import "time"

// Severity - уровень уведомления.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type Notification struct {
	ID        uint64
	UserID    uint64
	Title     string
	Message   string
	Severity  Severity
	IsRead    bool
	CreatedAt time.Time
}
