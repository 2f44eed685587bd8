package dto

type NotificationDTO struct {
	ID        uint64 `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Severity  string `json:"type"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}

type ActivityEntryDTO struct {
	ID         uint64 `json:"id"`
	UserID     uint64 `json:"user_id"`
	UserName   string `json:"user_name"`
	Action     string `json:"action"`
	EntityType string `json:"entity_type,omitempty"`
	EntityID   uint64 `json:"entity_id,omitempty"`
	OldValues  string `json:"old_values,omitempty"`
	NewValues  string `json:"new_values,omitempty"`
	CreatedAt  string `json:"created_at"`
}

type ActivityListFilterDTO struct {
	UserID   uint64
	Action   string
	DateFrom string
	DateTo   string
}
