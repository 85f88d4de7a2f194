package reports

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/user/timemanager-go/apperror"
	"github.com/user/timemanager-go/auth"
	"github.com/user/timemanager-go/clocks"
	"github.com/user/timemanager-go/domain"
	"github.com/user/timemanager-go/users"
)

var (
	manager  = domain.Requester{ID: 1, Role: domain.RoleManager}
	employee = domain.Requester{ID: 2, Role: domain.RoleEmployee}
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func newTestService() *ReportService {
	directory := users.NewFakeStore(
		domain.User{ID: 1, Username: "boss", Role: domain.RoleManager},
		domain.User{ID: 2, Username: "alice", Role: domain.RoleEmployee},
		domain.User{ID: 3, Username: "bob", Role: domain.RoleEmployee},
	)
	events := clocks.NewFakeStore(
		// 8h on March 1st, 6h on March 2nd, then a dangling "in".
		domain.ClockEvent{ID: 1, UserID: 2, Status: true, Time: at("2024-03-01T09:00:00Z")},
		domain.ClockEvent{ID: 2, UserID: 2, Status: false, Time: at("2024-03-01T17:00:00Z")},
		domain.ClockEvent{ID: 3, UserID: 2, Status: true, Time: at("2024-03-02T09:00:00Z")},
		domain.ClockEvent{ID: 4, UserID: 2, Status: false, Time: at("2024-03-02T15:00:00Z")},
		domain.ClockEvent{ID: 5, UserID: 2, Status: true, Time: at("2024-03-03T09:00:00Z")},
	)
	return NewReportService(directory, events, zap.NewNop())
}

func TestGet(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	report, err := s.Get(ctx, employee, Query{UserID: 2})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	// The dangling in adds a third work day but no hours.
	if report.TotalHours != 14 || report.WorkDays != 3 || report.AverageDailyHours != 4.67 {
		t.Errorf("Get() = %+v, want 14h over 3 days, 4.67 avg", report)
	}
	if report.StartDate != nil || report.EndDate != nil {
		t.Errorf("unbounded report echoes %v/%v, want nil", report.StartDate, report.EndDate)
	}

	end := at("2024-03-02T23:59:59Z")
	raw := "2024-03-02T23:59:59Z"
	report, err = s.Get(ctx, manager, Query{UserID: 2, EndDate: &raw, Window: clocks.Window{End: &end}})
	if err != nil {
		t.Fatalf("Get() windowed error = %v", err)
	}
	if report.TotalHours != 14 || report.WorkDays != 2 || report.AverageDailyHours != 7 {
		t.Errorf("Get() windowed = %+v, want 14h over 2 days", report)
	}
	if report.EndDate == nil || *report.EndDate != raw {
		t.Errorf("EndDate = %v, want %q", report.EndDate, raw)
	}

	empty, err := s.Get(ctx, manager, Query{UserID: 3})
	if err != nil {
		t.Fatalf("Get() empty error = %v", err)
	}
	if empty.TotalHours != 0 || empty.WorkDays != 1 || empty.AverageDailyHours != 0 {
		t.Errorf("Get() empty = %+v, want 0/1/0", empty)
	}
}

func TestGetChecks(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	if _, err := s.Get(ctx, employee, Query{UserID: 3}); !apperror.IsForbidden(err) {
		t.Errorf("employee on other user error = %v, want Forbidden", err)
	}
	// Existence is checked first, so even employees see 404 for unknown ids.
	if _, err := s.Get(ctx, employee, Query{UserID: 99}); !apperror.IsNotFound(err) {
		t.Errorf("unknown user error = %v, want NotFound", err)
	}
	if _, err := s.Get(ctx, manager, Query{UserID: 3}); err != nil {
		t.Errorf("manager on other user error = %v", err)
	}
}

func TestHandleGetReport(t *testing.T) {
	tests := []struct {
		name       string
		requester  domain.Requester
		query      string
		wantStatus int
		wantMsg    string
	}{
		{"missing userId", employee, "", http.StatusBadRequest, "userId required in query"},
		{"bad userId", employee, "?userId=abc", http.StatusBadRequest, ""},
		{"bad date", employee, "?userId=2&startDate=soon", http.StatusBadRequest, ""},
		{"other user", employee, "?userId=3", http.StatusForbidden, "Insufficient permissions"},
		{"unknown user", manager, "?userId=99", http.StatusNotFound, "User not found"},
		{"own report", employee, "?userId=2&startDate=2024-03-01&endDate=2024-03-03", http.StatusOK, ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := chi.NewRouter()
			r.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
					next.ServeHTTP(w, req.WithContext(auth.NewContextWithRequester(req.Context(), test.requester)))
				})
			})
			r.Route("/reports", NewHandlers(newTestService()).RegisterRoutes)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports"+test.query, nil))
			if rec.Code != test.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, test.wantStatus, rec.Body.String())
			}
			if test.wantMsg != "" {
				var resp apperror.ErrorResponse
				if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if resp.Error.Message != test.wantMsg {
					t.Errorf("message = %q, want %q", resp.Error.Message, test.wantMsg)
				}
			}
		})
	}
}

func TestReportPayload(t *testing.T) {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.NewContextWithRequester(req.Context(), employee)))
		})
	})
	r.Route("/reports", NewHandlers(newTestService()).RegisterRoutes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports?userId=2&startDate=2024-03-01", nil))

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]any{
		"userId":            float64(2),
		"totalHours":        float64(14),
		"averageDailyHours": 4.67,
		"workDays":          float64(3),
		"startDate":         "2024-03-01",
		"endDate":           nil,
	}
	for key, value := range want {
		got, ok := body[key]
		if !ok {
			t.Errorf("payload missing %q", key)
			continue
		}
		if got != value {
			t.Errorf("%s = %v, want %v", key, got, value)
		}
	}
}
