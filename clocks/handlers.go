package clocks

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/timemanager-go/apperror"
	"github.com/user/timemanager-go/auth"
	"github.com/user/timemanager-go/httpx"
)

// ToggleRequest is the body of POST /api/clocks. user_id may be a number
// or a numeric string.
type ToggleRequest struct {
	UserID *httpx.LooseInt64 `json:"user_id" swaggertype:"integer" example:"2"`
}

// ClockHandlers provides HTTP handlers for clock events.
type ClockHandlers struct {
	service *ClockService
}

// NewClockHandlers creates ClockHandlers.
func NewClockHandlers(service *ClockService) *ClockHandlers {
	return &ClockHandlers{service: service}
}

// RegisterRoutes mounts the clock routes behind an already authenticated router.
func (h *ClockHandlers) RegisterRoutes(r chi.Router) {
	r.Post("/", h.HandleToggle())
	r.Get("/{userId}", h.HandleList())
}

// HandleToggle godoc
// @Summary Clock in or out
// @Description Appends an event with the opposite status of the user's last one ("in" if there is none).
// @Tags clocks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param toggle body clocks.ToggleRequest true "User to clock"
// @Success 201 {object} domain.ClockEvent
// @Failure 400 {object} apperror.ErrorResponse "user_id required"
// @Failure 403 {object} apperror.ErrorResponse "Insufficient permissions"
// @Failure 404 {object} apperror.ErrorResponse "User not found"
// @Router /clocks [post]
func (h *ClockHandlers) HandleToggle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requester, ok := auth.MustRequester(w, r)
		if !ok {
			return
		}

		var req ToggleRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, apperror.NewValidationError("user_id required", err))
			return
		}
		if req.UserID == nil || *req.UserID <= 0 {
			httpx.WriteError(w, r, apperror.NewValidationError("user_id required", nil))
			return
		}

		event, err := h.service.Toggle(r.Context(), requester, int64(*req.UserID))
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, event)
	}
}

// HandleList godoc
// @Summary List clock events
// @Description Lists a user's events in ascending time order, optionally bounded (inclusive) by start_date and end_date.
// @Tags clocks
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Param start_date query string false "Lower bound, YYYY-MM-DD or RFC 3339"
// @Param end_date query string false "Upper bound, YYYY-MM-DD or RFC 3339"
// @Success 200 {array} domain.ClockEvent
// @Failure 400 {object} apperror.ErrorResponse "Invalid id or date"
// @Failure 403 {object} apperror.ErrorResponse "Insufficient permissions"
// @Failure 404 {object} apperror.ErrorResponse "User not found"
// @Router /clocks/{userId} [get]
func (h *ClockHandlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requester, ok := auth.MustRequester(w, r)
		if !ok {
			return
		}
		userID, err := httpx.PathID(r, "userId")
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		window, err := ParseWindow(r, "start_date", "end_date")
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		events, err := h.service.List(r.Context(), requester, userID, window)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, events)
	}
}

// ParseWindow reads the two optional query bounds. The reports package
// uses it with its camelCase parameter names.
func ParseWindow(r *http.Request, startParam, endParam string) (Window, error) {
	start, err := httpx.OptionalTime(r, startParam)
	if err != nil {
		return Window{}, err
	}
	end, err := httpx.OptionalTime(r, endParam)
	if err != nil {
		return Window{}, err
	}
	return Window{Start: start, End: end}, nil
}
