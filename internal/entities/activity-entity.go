package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// ActivityEntry - запись журнала действий. Пишется слушателем шины событий,
// сбой записи никогда не прерывает основную операцию.
type ActivityEntry struct {
	ID         uint64
	UserID     uint64
	Action     string
	EntityType null.String
	EntityID   null.Uint64
	OldValues  null.JSON
	NewValues  null.JSON
	CreatedAt  time.Time
}
