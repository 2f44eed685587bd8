package dto

import "github.com/aarondl/null/v8"

type CreateUserDTO struct {
	Username   string      `json:"username" validate:"required"`
	Password   string      `json:"password" validate:"required,min=6"`
	FullName   string      `json:"full_name" validate:"required"`
	Email      null.String `json:"email"`
	Phone      null.String `json:"phone"`
	Role       string      `json:"role"`
	Department null.String `json:"department"`
}

type UpdateUserDTO struct {
	FullName   *string     `json:"full_name"`
	Email      null.String `json:"email"`
	Phone      null.String `json:"phone"`
	Role       *string     `json:"role"`
	Department null.String `json:"department"`
	IsActive   *bool       `json:"is_active"`
}

type ResetPasswordDTO struct {
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

type UserDTO struct {
	ID              uint64      `json:"id"`
	Username        string      `json:"username"`
	FullName        string      `json:"full_name"`
	Email           null.String `json:"email"`
	Phone           null.String `json:"phone"`
	Role            string      `json:"role"`
	Department      null.String `json:"department"`
	IsActive        bool        `json:"is_active"`
	OperationsCount uint64      `json:"operations_count"`
	CreatedAt       string      `json:"created_at"`
}

type ShortUserDTO struct {
	ID       uint64 `json:"id"`
	FullName string `json:"full_name"`
}
