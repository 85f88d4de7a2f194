package auth

import (
	"context"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/user/timemanager-go/apperror"
	"github.com/user/timemanager-go/domain"
)

// memoryUserStore is a UserStore that keeps users in a slice.
type memoryUserStore struct {
	mu     sync.Mutex
	users  []domain.User
	nextID int64
}

func (s *memoryUserStore) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username {
			return nil, apperror.NewConflictError("Username already used", domain.ErrUsernameTaken)
		}
		if u.Email == user.Email {
			return nil, apperror.NewConflictError("Email already used", domain.ErrEmailTaken)
		}
	}
	s.nextID++
	created := *user
	created.ID = s.nextID
	s.users = append(s.users, created)
	return &created, nil
}

func (s *memoryUserStore) FindByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, apperror.NewNotFoundError("User not found", nil)
}

func (s *memoryUserStore) FindByLogin(_ context.Context, login string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == login || u.Email == strings.ToLower(login) {
			return &u, nil
		}
	}
	return nil, apperror.NewNotFoundError("User not found", nil)
}

func newTestService() (*AuthService, *memoryUserStore, *TokenManager) {
	store := &memoryUserStore{}
	tokens := NewTokenManager(testAuthConfig())
	return NewAuthService(store, tokens, NewMemoryRevoker(), zap.NewNop()), store, tokens
}

func registerAlice(t *testing.T, s *AuthService) *AuthResponse {
	t.Helper()
	resp, err := s.Register(context.Background(), RegisterRequest{
		Username:  "alice",
		Email:     "Alice@Example.com",
		Password:  "Password123",
		FirstName: "Alice",
		LastName:  "Martin",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return resp
}

func TestRegister(t *testing.T) {
	s, _, tokens := newTestService()
	resp := registerAlice(t, s)

	if resp.User.Role != domain.RoleEmployee {
		t.Errorf("role = %q, want employee", resp.User.Role)
	}
	if resp.User.Email != "alice@example.com" {
		t.Errorf("email = %q, want lowercased", resp.User.Email)
	}
	if resp.User.PasswordHash == "Password123" || !CheckPassword(resp.User.PasswordHash, "Password123") {
		t.Error("password was not hashed correctly")
	}
	if _, err := tokens.ParseAccess(resp.AccessToken); err != nil {
		t.Errorf("issued access token does not parse: %v", err)
	}

	tests := []struct {
		name    string
		req     RegisterRequest
		wantMsg string
	}{
		{"duplicate email", RegisterRequest{Username: "alice2", Email: "alice@example.com", Password: "Password123"}, "Email already registered"},
		{"duplicate username", RegisterRequest{Username: "alice", Email: "other@example.com", Password: "Password123"}, "Username already taken"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := s.Register(context.Background(), test.req)
			appErr := apperror.FromError(err)
			if appErr.StatusCode() != 400 || appErr.Message != test.wantMsg {
				t.Errorf("error = %d %q, want 400 %q", appErr.StatusCode(), appErr.Message, test.wantMsg)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	s, _, _ := newTestService()
	registerAlice(t, s)

	tests := []struct {
		name     string
		login    string
		password string
		wantErr  bool
	}{
		{"by username", "alice", "Password123", false},
		{"by email", "alice@example.com", "Password123", false},
		{"wrong password", "alice", "Password124", true},
		{"unknown user", "bob", "Password123", true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			resp, err := s.Login(context.Background(), LoginRequest{Username: test.login, Password: test.password})
			if test.wantErr {
				if apperror.FromError(err).StatusCode() != 401 {
					t.Fatalf("Login() error = %v, want 401", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			if resp.User.Username != "alice" {
				t.Errorf("user = %q, want alice", resp.User.Username)
			}
		})
	}
}

func TestRefreshRotates(t *testing.T) {
	s, _, _ := newTestService()
	first := registerAlice(t, s)

	second, err := s.Refresh(context.Background(), first.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if second.AccessToken == "" || second.RefreshToken == "" {
		t.Fatal("Refresh() returned empty tokens")
	}

	// The consumed refresh token is revoked.
	_, err = s.Refresh(context.Background(), first.RefreshToken)
	if apperror.FromError(err).StatusCode() != 401 {
		t.Errorf("reused refresh token error = %v, want 401", err)
	}

	// An access token is the wrong type.
	_, err = s.Refresh(context.Background(), first.AccessToken)
	if apperror.FromError(err).StatusCode() != 400 {
		t.Errorf("access token as refresh error = %v, want 400", err)
	}

	_, err = s.Refresh(context.Background(), "garbage")
	if apperror.FromError(err).StatusCode() != 401 {
		t.Errorf("garbage refresh error = %v, want 401", err)
	}
}

func TestRefreshUnknownUser(t *testing.T) {
	s, _, tokens := newTestService()
	pair, _ := tokens.IssuePair(&domain.User{ID: 99, Role: domain.RoleEmployee})

	_, err := s.Refresh(context.Background(), pair.RefreshToken)
	appErr := apperror.FromError(err)
	if appErr.StatusCode() != 401 || appErr.Message != "User not found" {
		t.Errorf("error = %d %q, want 401 User not found", appErr.StatusCode(), appErr.Message)
	}
}

func TestLogout(t *testing.T) {
	s, _, tokens := newTestService()
	resp := registerAlice(t, s)
	claims, _ := tokens.ParseAccess(resp.AccessToken)

	if err := s.Logout(context.Background(), claims, resp.RefreshToken); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	if revoked, _ := s.revoker.IsRevoked(context.Background(), claims.ID); !revoked {
		t.Error("access token not revoked")
	}
	if _, err := s.Refresh(context.Background(), resp.RefreshToken); err == nil {
		t.Error("refresh token still usable after logout")
	}
}
