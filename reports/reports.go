// Package reports computes per-user worked-hours reports from clock events.
package reports

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/user/timemanager-go/apperror"
	"github.com/user/timemanager-go/auth"
	"github.com/user/timemanager-go/clocks"
	"github.com/user/timemanager-go/domain"
	"github.com/user/timemanager-go/hours"
	"github.com/user/timemanager-go/httpx"
	"github.com/user/timemanager-go/policy"
)

// EventQuerier is the subset of clocks.Store the report needs.
type EventQuerier interface {
	Query(ctx context.Context, userID int64, w clocks.Window) ([]domain.ClockEvent, error)
}

// Query is one report request. StartDate and EndDate hold the raw query
// values, echoed back in the report; Window holds their parsed form.
type Query struct {
	UserID    int64
	StartDate *string
	EndDate   *string
	Window    clocks.Window
}

// Report is the response of GET /api/reports.
type Report struct {
	UserID            int64   `json:"userId" example:"2"`
	TotalHours        float64 `json:"totalHours" example:"14"`
	AverageDailyHours float64 `json:"averageDailyHours" example:"7"`
	WorkDays          int     `json:"workDays" example:"2"`
	StartDate         *string `json:"startDate" example:"2024-03-01"`
	EndDate           *string `json:"endDate" example:"2024-03-31"`
}

// ReportService builds reports. It holds no state between calls.
type ReportService struct {
	users  clocks.UserFinder
	events EventQuerier
	log    *zap.Logger
}

// NewReportService creates a ReportService.
func NewReportService(users clocks.UserFinder, events EventQuerier, log *zap.Logger) *ReportService {
	return &ReportService{users: users, events: events, log: log}
}

// Get checks the user exists, then the access policy, then aggregates the
// user's events in the window.
func (s *ReportService) Get(ctx context.Context, requester domain.Requester, q Query) (*Report, error) {
	if _, err := s.users.FindByID(ctx, q.UserID); err != nil {
		return nil, err
	}
	if err := policy.Authorize(requester, q.UserID); err != nil {
		return nil, err
	}

	events, err := s.events.Query(ctx, q.UserID, q.Window)
	if err != nil {
		return nil, err
	}
	summary := hours.Summarize(events)

	return &Report{
		UserID:            q.UserID,
		TotalHours:        summary.TotalHours,
		AverageDailyHours: summary.AverageDailyHours,
		WorkDays:          summary.WorkDays,
		StartDate:         q.StartDate,
		EndDate:           q.EndDate,
	}, nil
}

// Handlers serves the report endpoint.
type Handlers struct {
	service *ReportService
}

// NewHandlers creates Handlers.
func NewHandlers(service *ReportService) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes mounts GET / behind an already authenticated router.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleGetReport())
}

// HandleGetReport godoc
// @Summary Worked-hours report
// @Description Total and average daily hours for one user, optionally within an inclusive date window.
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param userId query int true "User ID"
// @Param startDate query string false "Lower bound, YYYY-MM-DD or RFC 3339"
// @Param endDate query string false "Upper bound, YYYY-MM-DD or RFC 3339"
// @Success 200 {object} reports.Report
// @Failure 400 {object} apperror.ErrorResponse "userId required in query"
// @Failure 403 {object} apperror.ErrorResponse "Insufficient permissions"
// @Failure 404 {object} apperror.ErrorResponse "User not found"
// @Router /reports [get]
func (h *Handlers) HandleGetReport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requester, ok := auth.MustRequester(w, r)
		if !ok {
			return
		}

		values := r.URL.Query()
		rawID := values.Get("userId")
		if rawID == "" {
			httpx.WriteError(w, r, apperror.NewValidationError("userId required in query", nil))
			return
		}
		userID, err := httpx.ParseID(rawID, "userId")
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		window, err := clocks.ParseWindow(r, "startDate", "endDate")
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		report, err := h.service.Get(r.Context(), requester, Query{
			UserID:    userID,
			StartDate: optional(values.Get("startDate")),
			EndDate:   optional(values.Get("endDate")),
			Window:    window,
		})
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, report)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
