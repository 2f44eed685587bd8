package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// Role - закрытый тип роли. Все проверки полномочий идут через него,
// а не через сравнение сырых строк.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleAdmin:
		return true
	}
	return false
}

func (r Role) IsAdmin() bool { return r == RoleAdmin }

func (r Role) String() string { return string(r) }

type User struct {
	ID           uint64
	Username     string
	PasswordHash string
	FullName     string
	Email        null.String
	Phone        null.String
	Role         Role
	Department   null.String
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor - идентичность текущего пользователя, извлечённая из токена.
// Ядро не знает, откуда она взялась.
type Actor struct {
	ID       uint64
	Role     Role
	FullName string
}
