package users

import (
	"context"
	"encoding/json"
	"testing"

	"go.uber.org/zap"

	"github.com/user/timemanager-go/apperror"
	"github.com/user/timemanager-go/auth"
	"github.com/user/timemanager-go/domain"
)

var (
	manager  = domain.Requester{ID: 1, Role: domain.RoleManager}
	employee = domain.Requester{ID: 2, Role: domain.RoleEmployee}
)

func seededStore() *FakeStore {
	return NewFakeStore(
		domain.User{ID: 1, Username: "boss", Email: "boss@example.com", Role: domain.RoleManager},
		domain.User{ID: 2, Username: "alice", Email: "alice@example.com", Role: domain.RoleEmployee},
		domain.User{ID: 3, Username: "bob", Email: "bob@example.com", Role: domain.RoleEmployee},
	)
}

func ptr[T any](v T) *T { return &v }

func TestGet(t *testing.T) {
	s := NewUserService(seededStore(), zap.NewNop())

	tests := []struct {
		name      string
		requester domain.Requester
		id        int64
		wantCheck func(error) bool
	}{
		{"employee reads self", employee, 2, nil},
		{"employee reads other", employee, 3, apperror.IsForbidden},
		{"manager reads other", manager, 3, nil},
		{"manager reads missing", manager, 99, apperror.IsNotFound},
		// Policy runs before the lookup, so a missing id is still 403 for employees.
		{"employee reads missing", employee, 99, apperror.IsForbidden},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			user, err := s.Get(context.Background(), test.requester, test.id)
			if test.wantCheck == nil {
				if err != nil {
					t.Fatalf("Get() error = %v", err)
				}
				if user.ID != test.id {
					t.Errorf("Get() id = %d, want %d", user.ID, test.id)
				}
				return
			}
			if !test.wantCheck(err) {
				t.Errorf("Get() error = %v", err)
			}
		})
	}
}

func TestCreate(t *testing.T) {
	store := seededStore()
	s := NewUserService(store, zap.NewNop())

	user, err := s.Create(context.Background(), CreateUserRequest{
		Username:  "carol",
		Email:     "Carol@Example.com",
		Password:  "Password123",
		FirstName: "Carol",
		LastName:  "Smith",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if user.Role != domain.RoleEmployee {
		t.Errorf("role = %q, want employee default", user.Role)
	}
	if user.Email != "carol@example.com" {
		t.Errorf("email = %q, want lowercased", user.Email)
	}
	if !auth.CheckPassword(user.PasswordHash, "Password123") {
		t.Error("password hash does not verify")
	}

	_, err = s.Create(context.Background(), CreateUserRequest{
		Username: "carol2", Email: "alice@example.com", Password: "Password123",
	})
	appErr := apperror.FromError(err)
	if appErr.StatusCode() != 409 || appErr.Message != "Email already used" {
		t.Errorf("duplicate email error = %d %q, want 409 Email already used", appErr.StatusCode(), appErr.Message)
	}
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name      string
		requester domain.Requester
		id        int64
		req       UpdateUserRequest
		wantCheck func(error) bool
	}{
		{"employee updates own name", employee, 2, UpdateUserRequest{FirstName: ptr("Alicia")}, nil},
		{"employee updates other", employee, 3, UpdateUserRequest{FirstName: ptr("Robert")}, apperror.IsForbidden},
		{"employee changes own role", employee, 2, UpdateUserRequest{Role: ptr(domain.RoleManager)}, apperror.IsForbidden},
		{"manager promotes", manager, 3, UpdateUserRequest{Role: ptr(domain.RoleManager)}, nil},
		{"manager updates missing", manager, 99, UpdateUserRequest{FirstName: ptr("x")}, apperror.IsNotFound},
		{"email collision", employee, 2, UpdateUserRequest{Email: ptr("bob@example.com")}, apperror.IsConflictError},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := NewUserService(seededStore(), zap.NewNop())
			user, err := s.Update(context.Background(), test.requester, test.id, test.req)
			if test.wantCheck != nil {
				if !test.wantCheck(err) {
					t.Errorf("Update() error = %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Update() error = %v", err)
			}
			if test.req.FirstName != nil && user.FirstName != *test.req.FirstName {
				t.Errorf("first_name = %q, want %q", user.FirstName, *test.req.FirstName)
			}
			if test.req.Role != nil && user.Role != *test.req.Role {
				t.Errorf("role = %q, want %q", user.Role, *test.req.Role)
			}
		})
	}
}

func TestUpdatePasswordIsHashed(t *testing.T) {
	store := seededStore()
	s := NewUserService(store, zap.NewNop())

	if _, err := s.Update(context.Background(), employee, 2, UpdateUserRequest{Password: ptr("NewPassword1")}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	stored, _ := store.FindByID(context.Background(), 2)
	if !auth.CheckPassword(stored.PasswordHash, "NewPassword1") {
		t.Error("stored hash does not match the new password")
	}
}

func TestUpdateClearsNullableFields(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantTeam  *int64
		wantPhone *string
	}{
		{"null team leaves the team", `{"team_id":null}`, nil, ptr("+33600000000")},
		{"absent team is kept", `{"first_name":"Alicia"}`, ptr(int64(7)), ptr("+33600000000")},
		{"new team", `{"team_id":9}`, ptr(int64(9)), ptr("+33600000000")},
		{"null phone is cleared", `{"phone_number":null}`, ptr(int64(7)), nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store := seededStore()
			ctx := context.Background()
			store.SetTeam(ptr(int64(7)), 2)
			if _, err := store.Update(ctx, 2, Changes{PhoneNumber: ptr("+33600000000")}); err != nil {
				t.Fatalf("seed phone: %v", err)
			}

			var req UpdateUserRequest
			if err := json.Unmarshal([]byte(test.body), &req); err != nil {
				t.Fatalf("decode %s: %v", test.body, err)
			}
			user, err := NewUserService(store, zap.NewNop()).Update(ctx, manager, 2, req)
			if err != nil {
				t.Fatalf("Update() error = %v", err)
			}

			switch {
			case test.wantTeam == nil && user.TeamID != nil:
				t.Errorf("team_id = %d, want null", *user.TeamID)
			case test.wantTeam != nil && (user.TeamID == nil || *user.TeamID != *test.wantTeam):
				t.Errorf("team_id = %v, want %d", user.TeamID, *test.wantTeam)
			}
			switch {
			case test.wantPhone == nil && user.PhoneNumber != nil:
				t.Errorf("phone_number = %q, want null", *user.PhoneNumber)
			case test.wantPhone != nil && (user.PhoneNumber == nil || *user.PhoneNumber != *test.wantPhone):
				t.Errorf("phone_number = %v, want %q", user.PhoneNumber, *test.wantPhone)
			}
		})
	}
}

func TestFindByLoginPrefersUsername(t *testing.T) {
	store := seededStore()
	ctx := context.Background()
	if _, err := store.Create(ctx, &domain.User{Username: "alice@example.com", Email: "other@example.com", Role: domain.RoleEmployee}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	user, err := store.FindByLogin(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("FindByLogin() error = %v", err)
	}
	if user.Username != "alice@example.com" {
		t.Errorf("FindByLogin() = %q, want the account whose username matches", user.Username)
	}
	if user, _ := store.FindByLogin(ctx, "ALICE@example.com"); user == nil || user.ID != 2 {
		t.Errorf("email login = %+v, want user 2", user)
	}
}

func TestDelete(t *testing.T) {
	store := seededStore()
	s := NewUserService(store, zap.NewNop())

	if err := s.Delete(context.Background(), 3); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.FindByID(context.Background(), 3); !apperror.IsNotFound(err) {
		t.Errorf("deleted user still found, err = %v", err)
	}
	if err := s.Delete(context.Background(), 3); !apperror.IsNotFound(err) {
		t.Errorf("second Delete() error = %v, want NotFound", err)
	}
}
