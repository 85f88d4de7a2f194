// Package auth is responsible for handling authentication and authorization logic.
// This includes user registration, login, token generation (JWT), token
// validation and revocation. Account rows themselves live in the users
// package; auth reaches them through the UserStore interface.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/user/timemanager-go/apperror"
	"github.com/user/timemanager-go/domain"
)

// UserStore is the identity collaborator auth needs. Lookups return an
// apperror NotFoundError when nothing matches.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	// FindByLogin matches either the username or the email address.
	FindByLogin(ctx context.Context, login string) (*domain.User, error)
}

// AuthService provides authentication-related services.
// Dependencies are injected explicitly via the constructor.
type AuthService struct {
	users   UserStore
	tokens  *TokenManager
	revoker Revoker
	log     *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, tokens *TokenManager, revoker Revoker, log *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, revoker: revoker, log: log}
}

var errInvalidCredentials = apperror.NewAuthError("Invalid credentials", nil)

// Register creates a new employee account and signs the user in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	hashedPassword, err := HashPassword(req.Password)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash password", err)
	}

	user, err := s.users.Create(ctx, &domain.User{
		Username: strings.TrimSpace(req.Username),
		// Emails are stored lowercase so lookups are case-insensitive.
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hashedPassword,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		Role:         domain.RoleEmployee,
	})
	if err != nil {
		// Registration reports duplicates as 400, unlike the 409 of admin user creation.
		switch {
		case errors.Is(err, domain.ErrEmailTaken):
			return nil, apperror.NewBadRequestError("Email already registered", err)
		case errors.Is(err, domain.ErrUsernameTaken):
			return nil, apperror.NewBadRequestError("Username already taken", err)
		}
		return nil, err
	}

	s.log.Info("user registered", zap.Int64("user_id", user.ID))
	return s.respond(user)
}

// Login authenticates a user by username or email and password.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.users.FindByLogin(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if apperror.IsNotFound(err) {
			// Same answer for unknown user and wrong password, so neither is revealed.
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if !CheckPassword(user.PasswordHash, req.Password) {
		return nil, errInvalidCredentials
	}
	return s.respond(user)
}

// Refresh exchanges a valid refresh token for a new token pair. The old
// refresh token is revoked so each one can be used once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		if errors.Is(err, ErrWrongTokenType) {
			return nil, apperror.NewBadRequestError("Invalid refresh token", err)
		}
		return nil, apperror.NewAuthError("Invalid refresh token", err)
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, apperror.NewUnavailableError("authentication temporarily unavailable", err)
	}
	if revoked {
		return nil, apperror.NewAuthError("Invalid refresh token", nil)
	}

	userID, _ := claims.UserID()
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewAuthError("User not found", err)
		}
		return nil, err
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, apperror.NewInternalError("failed to issue tokens", err)
	}
	s.revokeUntilExpiry(ctx, claims)

	return &RefreshResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// Logout revokes the access token the request was made with and, when
// given, the matching refresh token.
func (s *AuthService) Logout(ctx context.Context, access *CustomClaims, refreshToken string) error {
	if err := s.revoke(ctx, access); err != nil {
		return err
	}
	if refreshToken == "" {
		return nil
	}

	refresh, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		// An already invalid refresh token needs no revoking.
		return nil
	}
	if refresh.Subject != access.Subject {
		return apperror.NewForbiddenError("refresh token belongs to another user", nil)
	}
	return s.revoke(ctx, refresh)
}

func (s *AuthService) revoke(ctx context.Context, claims *CustomClaims) error {
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
		return apperror.NewUnavailableError("failed to revoke token", err)
	}
	return nil
}

// revokeUntilExpiry is revoke for paths where a failure must not fail the request.
func (s *AuthService) revokeUntilExpiry(ctx context.Context, claims *CustomClaims) {
	if err := s.revoke(ctx, claims); err != nil {
		s.log.Warn("failed to revoke rotated refresh token", zap.String("jti", claims.ID), zap.Error(err))
	}
}

func (s *AuthService) respond(user *domain.User) (*AuthResponse, error) {
	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, apperror.NewInternalError("failed to issue tokens", err)
	}
	return &AuthResponse{User: user, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}
