// Package domain holds the records shared by every feature package: users,
// teams and clock events, plus the identity of whoever is making a request.
// It has no dependencies so that auth, users, clocks and reports can all use
// the same types without import cycles.
package domain

import "time"

// Role is a user's authorization level.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleEmployee || r == RoleManager
}

// Requester is the authenticated identity issuing an API call.
type Requester struct {
	ID   int64
	Role Role
}

// IsManager reports whether the requester holds the manager role.
func (r Requester) IsManager() bool {
	return r.Role == RoleManager
}

// User represents an account. The password hash is never serialized.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PhoneNumber  *string   `json:"phone_number"`
	Role         Role      `json:"role"`
	TeamID       *int64    `json:"team_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Team groups users under an optional manager.
type Team struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	ManagerID   *int64    `json:"manager_id"`
	Members     []User    `json:"members"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ClockEvent is a single timestamped in/out state change for one user.
// Status true means "clocked in", false means "clocked out".
// Events are immutable once written.
type ClockEvent struct {
	ID     int64     `json:"id"`
	UserID int64     `json:"user_id"`
	Status bool      `json:"status"`
	Time   time.Time `json:"time"`
}
