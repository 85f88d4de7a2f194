// Package users, as part of the user account management module.
// This file, `service.go`, contains the business logic for user operations.
// It acts as the "Service" layer: role and ownership rules live here, the
// SQL lives in the Store.
package users

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/user/timemanager-go/apperror"
	"github.com/user/timemanager-go/auth"
	"github.com/user/timemanager-go/domain"
	"github.com/user/timemanager-go/policy"
)

// UserService provides methods for user account management.
type UserService struct {
	store Store
	log   *zap.Logger
}

// NewUserService creates a new UserService.
func NewUserService(store Store, log *zap.Logger) *UserService {
	return &UserService{store: store, log: log}
}

// List returns every user. Managers only; the route enforces the role.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.store.List(ctx)
}

// Get returns one user. Employees may only read themselves.
func (s *UserService) Get(ctx context.Context, requester domain.Requester, id int64) (*domain.User, error) {
	if err := policy.Authorize(requester, id); err != nil {
		return nil, err
	}
	return s.store.FindByID(ctx, id)
}

// Create adds a user on a manager's behalf. The role defaults to employee.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*domain.User, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash password", err)
	}

	role := req.Role
	if role == "" {
		role = domain.RoleEmployee
	}

	user, err := s.store.Create(ctx, &domain.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		Role:         role,
		TeamID:       req.TeamID,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user created", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// Update applies a partial update. Employees may only update themselves and
// may never change a role, not even their own.
func (s *UserService) Update(ctx context.Context, requester domain.Requester, id int64, req UpdateUserRequest) (*domain.User, error) {
	if err := policy.Authorize(requester, id); err != nil {
		return nil, err
	}
	if _, err := s.store.FindByID(ctx, id); err != nil {
		return nil, err
	}
	if req.Role != nil && !requester.IsManager() {
		return nil, policy.ErrInsufficientPermissions
	}

	changes := Changes{
		Username:         req.Username,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		PhoneNumber:      req.PhoneNumber.Value,
		ClearPhoneNumber: req.PhoneNumber.Set && req.PhoneNumber.Value == nil,
		Role:             req.Role,
		TeamID:           req.TeamID.Value,
		ClearTeam:        req.TeamID.Set && req.TeamID.Value == nil,
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		changes.Email = &email
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, apperror.NewInternalError("failed to hash password", err)
		}
		changes.PasswordHash = &hash
	}

	return s.store.Update(ctx, id, changes)
}

// Delete removes a user and, through the schema, their clock events.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("user deleted", zap.Int64("user_id", id))
	return nil
}
