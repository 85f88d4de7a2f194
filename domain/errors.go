package domain

import "errors"

// Causes attached to store errors so callers can tell which unique
// constraint was hit without parsing messages.
var (
	ErrUsernameTaken = errors.New("username already exists")
	ErrEmailTaken    = errors.New("email already exists")
)
