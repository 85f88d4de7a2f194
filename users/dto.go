// Package users, as part of the user account management module.
// This file, `dto.go`, defines Data Transfer Objects (DTOs) for the users module.
// Responses use domain.User directly, whose password hash is never serialized.
package users

import (
	"github.com/user/timemanager-go/domain"
	"github.com/user/timemanager-go/httpx"
)

// CreateUserRequest is the body of POST /api/users.
// @Description Request body for creating a user (manager only)
type CreateUserRequest struct {
	Username    string      `json:"username" validate:"required" example:"jdoe"`
	Email       string      `json:"email" validate:"required,email" example:"jdoe@example.com"`
	Password    string      `json:"password" validate:"required,strongpassword" example:"Password123"`
	FirstName   string      `json:"first_name" validate:"required" example:"John"`
	LastName    string      `json:"last_name" validate:"required" example:"Doe"`
	PhoneNumber *string     `json:"phone_number,omitempty" example:"+33600000000"`
	Role        domain.Role `json:"role,omitempty" validate:"omitempty,oneof=employee manager" example:"employee"`
	TeamID      *int64      `json:"team_id,omitempty" example:"1"`
}

// UpdateUserRequest is the body of PUT /api/users/{id}.
// Pointers allow partial updates: a nil field means "leave unchanged".
// phone_number and team_id may also be sent as null to clear them.
// @Description Request body for updating a user
type UpdateUserRequest struct {
	Username    *string                `json:"username,omitempty" validate:"omitempty,min=1" example:"jdoe"`
	Email       *string                `json:"email,omitempty" validate:"omitempty,email" example:"john.doe@example.com"`
	Password    *string                `json:"password,omitempty" validate:"omitempty,strongpassword" example:"NewPassword1"`
	FirstName   *string                `json:"first_name,omitempty" validate:"omitempty,min=1" example:"John"`
	LastName    *string                `json:"last_name,omitempty" validate:"omitempty,min=1" example:"Doe"`
	PhoneNumber httpx.Nullable[string] `json:"phone_number" swaggertype:"string" example:"+33600000000"`
	Role        *domain.Role           `json:"role,omitempty" validate:"omitempty,oneof=employee manager" example:"manager"`
	TeamID      httpx.Nullable[int64]  `json:"team_id" swaggertype:"integer" example:"1"`
}
