// Package auth provides authentication and authorization functionality.
// This file, `dto.go` (Data Transfer Object), defines the request and response
// bodies of the /api/auth endpoints. Struct tags `json:"..."` define the wire
// names, `validate:"..."` the rules checked by httpx.DecodeJSON, and
// `example:"..."` feeds the Swagger documentation.
package auth

import "github.com/user/timemanager-go/domain"

// RegisterRequest represents the registration request payload.
type RegisterRequest struct {
	Username    string  `json:"username" validate:"required" example:"jdoe"`
	Email       string  `json:"email" validate:"required,email" example:"jdoe@example.com"`
	Password    string  `json:"password" validate:"required,strongpassword" example:"Password123"`
	FirstName   string  `json:"first_name" validate:"required" example:"John"`
	LastName    string  `json:"last_name" validate:"required" example:"Doe"`
	PhoneNumber *string `json:"phone_number,omitempty" example:"+33600000000"`
}

// LoginRequest represents the login request payload.
// Username may hold either the username or the email address.
type LoginRequest struct {
	Username string `json:"username" validate:"required" example:"jdoe"`
	Password string `json:"password" validate:"required" example:"Password123"`
}

// RefreshRequest represents the token refresh request payload.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required" example:"eyJhbGciOiJIUzI1NiIs..."`
}

// LogoutRequest optionally names a refresh token to revoke alongside the access token.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"accessToken" example:"eyJhbGciOiJIUzI1NiIs..."`
	RefreshToken string       `json:"refreshToken" example:"eyJhbGciOiJIUzI1NiIs..."`
}

// RefreshResponse is returned by refresh.
type RefreshResponse struct {
	AccessToken  string `json:"accessToken" example:"eyJhbGciOiJIUzI1NiIs..."`
	RefreshToken string `json:"refreshToken" example:"eyJhbGciOiJIUzI1NiIs..."`
}
