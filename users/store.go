// Package users encapsulates all functionality related to user account management.
// This file, `store.go`, is the persistence layer: the Store interface the
// service depends on, and PgStore, its PostgreSQL implementation on pgx.
package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/user/timemanager-go/apperror"
	"github.com/user/timemanager-go/db"
	"github.com/user/timemanager-go/domain"
)

// Store persists user accounts. Lookups return an apperror NotFoundError
// when no row matches; unique violations come back as ConflictError wrapping
// domain.ErrUsernameTaken or domain.ErrEmailTaken.
type Store interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByLogin(ctx context.Context, login string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, id int64, changes Changes) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}

// Changes lists the columns to overwrite in Update. Nil fields are left alone.
// ClearPhoneNumber and ClearTeam set their column to NULL and win over the
// matching pointer.
type Changes struct {
	Username         *string
	Email            *string
	PasswordHash     *string
	FirstName        *string
	LastName         *string
	PhoneNumber      *string
	ClearPhoneNumber bool
	Role             *domain.Role
	TeamID           *int64
	ClearTeam        bool
}

// Empty reports whether no field is set.
func (c Changes) Empty() bool {
	return c.Username == nil && c.Email == nil && c.PasswordHash == nil &&
		c.FirstName == nil && c.LastName == nil && c.PhoneNumber == nil &&
		c.Role == nil && c.TeamID == nil && !c.ClearPhoneNumber && !c.ClearTeam
}

// Columns is the select list matching ScanUser. Other stores that join users reuse both.
const Columns = `id, username, email, password_hash, first_name, last_name,
	phone_number, role, team_id, created_at, updated_at`

// PgStore is the PostgreSQL Store.
type PgStore struct {
	db db.Querier
}

// NewPgStore creates a PgStore over a pool or a transaction.
func NewPgStore(q db.Querier) *PgStore {
	return &PgStore{db: q}
}

// ScanUser scans one row selected with Columns.
func ScanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.PhoneNumber,
		&user.Role,
		&user.TeamID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID retrieves a user by id.
func (s *PgStore) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+Columns+` FROM users WHERE id = $1`, id)
	user, err := ScanUser(row)
	if err != nil {
		return nil, notFoundOr(err, "Failed to get user")
	}
	return user, nil
}

// FindByLogin retrieves a user by username, or by email (case-insensitive).
// A username match wins over another account's email.
func (s *PgStore) FindByLogin(ctx context.Context, login string) (*domain.User, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+Columns+` FROM users WHERE username = $1 OR email = LOWER($1)
		 ORDER BY (username = $1) DESC, id LIMIT 1`, login)
	user, err := ScanUser(row)
	if err != nil {
		return nil, notFoundOr(err, "Failed to get user")
	}
	return user, nil
}

// List returns every user ordered by id.
func (s *PgStore) List(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.Query(ctx, `SELECT `+Columns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, apperror.NewDatabaseError("Failed to list users", err)
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.User, error) {
		user, err := ScanUser(row)
		if err != nil {
			return domain.User{}, err
		}
		return *user, nil
	})
	if err != nil {
		return nil, apperror.NewDatabaseError("Failed to list users", err)
	}
	return users, nil
}

// Create inserts a user and returns the stored row.
func (s *PgStore) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	role := user.Role
	if role == "" {
		role = domain.RoleEmployee
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, first_name, last_name, phone_number, role, team_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+Columns,
		user.Username, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		user.PhoneNumber, role, user.TeamID,
	)
	created, err := ScanUser(row)
	if err != nil {
		return nil, writeError(err, "Failed to create user")
	}
	return created, nil
}

// Update overwrites the columns set in changes and bumps updated_at.
// With no changes it returns the current row.
func (s *PgStore) Update(ctx context.Context, id int64, changes Changes) (*domain.User, error) {
	if changes.Empty() {
		return s.FindByID(ctx, id)
	}

	// The SET list is built from the fields that are present, with one
	// placeholder per value; the id goes last for the WHERE clause.
	var setClauses []string
	var args []any
	set := func(column string, value any) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if changes.Username != nil {
		set("username", *changes.Username)
	}
	if changes.Email != nil {
		set("email", *changes.Email)
	}
	if changes.PasswordHash != nil {
		set("password_hash", *changes.PasswordHash)
	}
	if changes.FirstName != nil {
		set("first_name", *changes.FirstName)
	}
	if changes.LastName != nil {
		set("last_name", *changes.LastName)
	}
	switch {
	case changes.ClearPhoneNumber:
		set("phone_number", nil)
	case changes.PhoneNumber != nil:
		set("phone_number", *changes.PhoneNumber)
	}
	if changes.Role != nil {
		set("role", *changes.Role)
	}
	switch {
	case changes.ClearTeam:
		set("team_id", nil)
	case changes.TeamID != nil:
		set("team_id", *changes.TeamID)
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE users SET %s, updated_at = NOW() WHERE id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), len(args), Columns)

	updated, err := ScanUser(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperror.NewNotFoundError("User not found", err)
		}
		return nil, writeError(err, "Failed to update user")
	}
	return updated, nil
}

// Delete removes a user. Their clock events go with them (ON DELETE CASCADE).
func (s *PgStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return apperror.NewDatabaseError("Failed to delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("User not found", nil)
	}
	return nil
}

func notFoundOr(err error, message string) error {
	if db.IsNoRows(err) {
		return apperror.NewNotFoundError("User not found", err)
	}
	return apperror.NewDatabaseError(message, err)
}

// writeError maps constraint violations of INSERT/UPDATE to client errors.
func writeError(err error, message string) error {
	if constraint, ok := db.UniqueViolation(err); ok {
		switch constraint {
		case "users_email_key":
			return apperror.NewConflictError("Email already used", domain.ErrEmailTaken)
		case "users_username_key":
			return apperror.NewConflictError("Username already used", domain.ErrUsernameTaken)
		}
		return apperror.NewConflictError("User already exists", err)
	}
	if _, ok := db.ForeignKeyViolation(err); ok {
		return apperror.NewBadRequestError("Team not found", err)
	}
	return apperror.NewDatabaseError(message, err)
}
