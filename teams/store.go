// Package teams manages teams and their membership.
// This file, `store.go`, holds the Store interface and its pgx implementation.
// Membership is the users.team_id column, so member lists are read from the
// users table with the users package's column list.
package teams

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/user/timemanager-go/apperror"
	"github.com/user/timemanager-go/db"
	"github.com/user/timemanager-go/domain"
	"github.com/user/timemanager-go/users"
)

// Store persists teams. Lookups of a missing team return an apperror NotFoundError.
type Store interface {
	List(ctx context.Context) ([]domain.Team, error)
	FindByID(ctx context.Context, id int64) (*domain.Team, error)
	Create(ctx context.Context, team *domain.Team) (*domain.Team, error)
	Update(ctx context.Context, id int64, changes Changes) (*domain.Team, error)
	Delete(ctx context.Context, id int64) error
	// SetMembers moves the given users into the team. Unknown user ids are ignored.
	SetMembers(ctx context.Context, id int64, userIDs []int64) error
}

// Changes lists the columns to overwrite in Update. Nil fields are left alone.
type Changes struct {
	Name        *string
	Description *string
	ManagerID   *int64
}

const teamColumns = `id, name, description, manager_id, created_at, updated_at`

var errTeamNotFound = apperror.NewNotFoundError("Team not found", nil)

// PgStore is the PostgreSQL Store.
type PgStore struct {
	db db.Querier
}

// NewPgStore creates a PgStore.
func NewPgStore(q db.Querier) *PgStore {
	return &PgStore{db: q}
}

func scanTeam(row pgx.Row) (*domain.Team, error) {
	var team domain.Team
	if err := row.Scan(&team.ID, &team.Name, &team.Description, &team.ManagerID, &team.CreatedAt, &team.UpdatedAt); err != nil {
		return nil, err
	}
	team.Members = []domain.User{}
	return &team, nil
}

// List returns every team with its members.
func (s *PgStore) List(ctx context.Context) ([]domain.Team, error) {
	rows, err := s.db.Query(ctx, `SELECT `+teamColumns+` FROM teams ORDER BY id`)
	if err != nil {
		return nil, apperror.NewDatabaseError("Failed to list teams", err)
	}
	teams, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Team, error) {
		team, err := scanTeam(row)
		if err != nil {
			return domain.Team{}, err
		}
		return *team, nil
	})
	if err != nil {
		return nil, apperror.NewDatabaseError("Failed to list teams", err)
	}
	if len(teams) == 0 {
		return teams, nil
	}

	ids := make([]int64, len(teams))
	for i, team := range teams {
		ids[i] = team.ID
	}
	members, err := s.members(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range teams {
		if m, ok := members[teams[i].ID]; ok {
			teams[i].Members = m
		}
	}
	return teams, nil
}

// FindByID returns one team with its members.
func (s *PgStore) FindByID(ctx context.Context, id int64) (*domain.Team, error) {
	team, err := scanTeam(s.db.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, errTeamNotFound
		}
		return nil, apperror.NewDatabaseError("Failed to get team", err)
	}

	members, err := s.members(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	if m, ok := members[id]; ok {
		team.Members = m
	}
	return team, nil
}

// members loads the users of the given teams in one query, grouped by team.
func (s *PgStore) members(ctx context.Context, teamIDs []int64) (map[int64][]domain.User, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+users.Columns+` FROM users WHERE team_id = ANY($1) ORDER BY id`, teamIDs)
	if err != nil {
		return nil, apperror.NewDatabaseError("Failed to load team members", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.User, error) {
		user, err := users.ScanUser(row)
		if err != nil {
			return domain.User{}, err
		}
		return *user, nil
	})
	if err != nil {
		return nil, apperror.NewDatabaseError("Failed to load team members", err)
	}

	grouped := make(map[int64][]domain.User)
	for _, user := range list {
		grouped[*user.TeamID] = append(grouped[*user.TeamID], user)
	}
	return grouped, nil
}

// Create inserts a team.
func (s *PgStore) Create(ctx context.Context, team *domain.Team) (*domain.Team, error) {
	created, err := scanTeam(s.db.QueryRow(ctx,
		`INSERT INTO teams (name, description, manager_id) VALUES ($1, $2, $3) RETURNING `+teamColumns,
		team.Name, team.Description, team.ManagerID,
	))
	if err != nil {
		return nil, writeError(err, "Failed to create team")
	}
	return created, nil
}

// Update overwrites the columns set in changes and returns the team with its members.
func (s *PgStore) Update(ctx context.Context, id int64, changes Changes) (*domain.Team, error) {
	var setClauses []string
	var args []any
	set := func(column string, value any) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if changes.Name != nil {
		set("name", *changes.Name)
	}
	if changes.Description != nil {
		set("description", *changes.Description)
	}
	if changes.ManagerID != nil {
		set("manager_id", *changes.ManagerID)
	}
	if len(setClauses) == 0 {
		return s.FindByID(ctx, id)
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE teams SET %s, updated_at = NOW() WHERE id = $%d`,
		strings.Join(setClauses, ", "), len(args))
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return nil, writeError(err, "Failed to update team")
	}
	if tag.RowsAffected() == 0 {
		return nil, errTeamNotFound
	}
	return s.FindByID(ctx, id)
}

// Delete removes a team. Its members stay, with team_id set to NULL by the schema.
func (s *PgStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return apperror.NewDatabaseError("Failed to delete team", err)
	}
	if tag.RowsAffected() == 0 {
		return errTeamNotFound
	}
	return nil
}

// SetMembers assigns userIDs to the team after checking it exists.
func (s *PgStore) SetMembers(ctx context.Context, id int64, userIDs []int64) error {
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM teams WHERE id = $1)`, id).Scan(&exists); err != nil {
		return apperror.NewDatabaseError("Failed to get team", err)
	}
	if !exists {
		return errTeamNotFound
	}
	if len(userIDs) == 0 {
		return nil
	}

	if _, err := s.db.Exec(ctx,
		`UPDATE users SET team_id = $1, updated_at = NOW() WHERE id = ANY($2)`, id, userIDs); err != nil {
		return apperror.NewDatabaseError("Failed to update team members", err)
	}
	return nil
}

func writeError(err error, message string) error {
	if _, ok := db.ForeignKeyViolation(err); ok {
		return apperror.NewBadRequestError("Manager not found", err)
	}
	return apperror.NewDatabaseError(message, err)
}
