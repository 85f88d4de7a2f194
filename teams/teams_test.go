package teams

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/user/timemanager-go/apperror"
	"github.com/user/timemanager-go/auth"
	"github.com/user/timemanager-go/domain"
	"github.com/user/timemanager-go/users"
)

var (
	manager  = domain.Requester{ID: 1, Role: domain.RoleManager}
	employee = domain.Requester{ID: 2, Role: domain.RoleEmployee}
)

func newFixture() (*TeamService, *users.FakeStore) {
	directory := users.NewFakeStore(
		domain.User{ID: 1, Username: "boss", Email: "boss@example.com", Role: domain.RoleManager},
		domain.User{ID: 2, Username: "alice", Email: "alice@example.com", Role: domain.RoleEmployee},
		domain.User{ID: 3, Username: "bob", Email: "bob@example.com", Role: domain.RoleEmployee},
	)
	return NewTeamService(NewFakeStore(directory), zap.NewNop()), directory
}

func TestTeamLifecycle(t *testing.T) {
	ctx := context.Background()
	s, directory := newFixture()

	if _, err := s.Create(ctx, CreateTeamRequest{Name: "  "}); !apperror.IsValidationError(err) {
		t.Fatalf("Create() blank name error = %v, want ValidationError", err)
	}

	team, err := s.Create(ctx, CreateTeamRequest{Name: "Support", ManagerID: &manager.ID})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := s.UpdateMembers(ctx, team.ID, UpdateMembersRequest{UserIDs: []int64{2, 3, 42}}); err != nil {
		t.Fatalf("UpdateMembers() error = %v", err)
	}
	got, err := s.Get(ctx, team.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got.Members) != 2 {
		t.Fatalf("members = %d, want 2 (unknown ids ignored)", len(got.Members))
	}

	name := "Support L2"
	updated, err := s.Update(ctx, team.ID, UpdateTeamRequest{Name: &name})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Name != name || len(updated.Members) != 2 {
		t.Errorf("Update() = %q with %d members", updated.Name, len(updated.Members))
	}

	if err := s.Delete(ctx, team.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	alice, _ := directory.FindByID(ctx, 2)
	if alice.TeamID != nil {
		t.Errorf("member team_id = %d after team delete, want nil", *alice.TeamID)
	}

	if _, err := s.Get(ctx, team.ID); !apperror.IsNotFound(err) {
		t.Errorf("Get() deleted team error = %v, want NotFound", err)
	}
	if err := s.UpdateMembers(ctx, team.ID, UpdateMembersRequest{UserIDs: []int64{2}}); !apperror.IsNotFound(err) {
		t.Errorf("UpdateMembers() deleted team error = %v, want NotFound", err)
	}
}

func TestTeamRoutes(t *testing.T) {
	tests := []struct {
		name       string
		requester  domain.Requester
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"employee lists", employee, http.MethodGet, "/teams", "", http.StatusOK},
		{"employee gets", employee, http.MethodGet, "/teams/1", "", http.StatusOK},
		{"missing team", employee, http.MethodGet, "/teams/9", "", http.StatusNotFound},
		{"employee cannot create", employee, http.MethodPost, "/teams", `{"name":"X"}`, http.StatusForbidden},
		{"manager creates", manager, http.MethodPost, "/teams", `{"name":"X"}`, http.StatusCreated},
		{"create without name", manager, http.MethodPost, "/teams", `{}`, http.StatusBadRequest},
		{"employee cannot update", employee, http.MethodPut, "/teams/1", `{"name":"Y"}`, http.StatusForbidden},
		{"manager updates", manager, http.MethodPut, "/teams/1", `{"name":"Y"}`, http.StatusOK},
		{"manager updates missing", manager, http.MethodPut, "/teams/9", `{"name":"Y"}`, http.StatusNotFound},
		{"manager sets members", manager, http.MethodPut, "/teams/1/members", `{"userIds":[2]}`, http.StatusOK},
		{"members of missing team", manager, http.MethodPut, "/teams/9/members", `{"userIds":[2]}`, http.StatusNotFound},
		{"employee cannot delete", employee, http.MethodDelete, "/teams/1", "", http.StatusForbidden},
		{"manager deletes", manager, http.MethodDelete, "/teams/1", "", http.StatusOK},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s, _ := newFixture()
			if _, err := s.Create(context.Background(), CreateTeamRequest{Name: "Support"}); err != nil {
				t.Fatalf("seed team: %v", err)
			}

			r := chi.NewRouter()
			r.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
					next.ServeHTTP(w, req.WithContext(auth.NewContextWithRequester(req.Context(), test.requester)))
				})
			})
			r.Route("/teams", NewTeamHandlers(s).RegisterRoutes)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(test.method, test.path, strings.NewReader(test.body)))
			if rec.Code != test.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, test.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestListTeamsIsArray(t *testing.T) {
	s, _ := newFixture()
	r := chi.NewRouter()
	r.Route("/teams", NewTeamHandlers(s).RegisterRoutes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teams", nil))

	var teams []domain.Team
	if err := json.NewDecoder(rec.Body).Decode(&teams); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if teams == nil {
		t.Error("empty list encoded as null, want []")
	}
}
