package teams

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/user/timemanager-go/apperror"
	"github.com/user/timemanager-go/domain"
)

// CreateTeamRequest is the body of POST /api/teams.
type CreateTeamRequest struct {
	Name        string  `json:"name" validate:"required" example:"Support"`
	Description *string `json:"description,omitempty" example:"First-line support"`
	ManagerID   *int64  `json:"manager_id,omitempty" example:"1"`
}

// UpdateTeamRequest is the body of PUT /api/teams/{id}. Nil fields are left alone.
type UpdateTeamRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1" example:"Support"`
	Description *string `json:"description,omitempty" example:"Second-line support"`
	ManagerID   *int64  `json:"manager_id,omitempty" example:"1"`
}

// UpdateMembersRequest is the body of PUT /api/teams/{id}/members.
type UpdateMembersRequest struct {
	UserIDs []int64 `json:"userIds" example:"2,3"`
}

// TeamService holds the team operations. Role checks happen in the router.
type TeamService struct {
	store Store
	log   *zap.Logger
}

// NewTeamService creates a TeamService.
func NewTeamService(store Store, log *zap.Logger) *TeamService {
	return &TeamService{store: store, log: log}
}

// List returns every team with its members.
func (s *TeamService) List(ctx context.Context) ([]domain.Team, error) {
	return s.store.List(ctx)
}

// Get returns one team with its members.
func (s *TeamService) Get(ctx context.Context, id int64) (*domain.Team, error) {
	return s.store.FindByID(ctx, id)
}

// Create adds a team.
func (s *TeamService) Create(ctx context.Context, req CreateTeamRequest) (*domain.Team, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.NewValidationError("Team name required", nil)
	}
	team, err := s.store.Create(ctx, &domain.Team{Name: name, Description: req.Description, ManagerID: req.ManagerID})
	if err != nil {
		return nil, err
	}
	s.log.Info("team created", zap.Int64("team_id", team.ID))
	return team, nil
}

// Update applies a partial update.
func (s *TeamService) Update(ctx context.Context, id int64, req UpdateTeamRequest) (*domain.Team, error) {
	return s.store.Update(ctx, id, Changes{Name: req.Name, Description: req.Description, ManagerID: req.ManagerID})
}

// Delete removes a team; its members become teamless.
func (s *TeamService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("team deleted", zap.Int64("team_id", id))
	return nil
}

// UpdateMembers moves the listed users into the team.
func (s *TeamService) UpdateMembers(ctx context.Context, id int64, req UpdateMembersRequest) error {
	return s.store.SetMembers(ctx, id, req.UserIDs)
}
