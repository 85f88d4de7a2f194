package teams

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/timemanager-go/apperror"
	"github.com/user/timemanager-go/auth"
	"github.com/user/timemanager-go/domain"
	"github.com/user/timemanager-go/httpx"
)

// TeamHandlers provides HTTP handlers for teams.
type TeamHandlers struct {
	service *TeamService
}

// NewTeamHandlers creates TeamHandlers.
func NewTeamHandlers(service *TeamService) *TeamHandlers {
	return &TeamHandlers{service: service}
}

// RegisterRoutes mounts the team routes behind an already authenticated router.
// Reads are open to any authenticated user, writes to managers.
func (h *TeamHandlers) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListTeams())
	r.Get("/{id}", h.HandleGetTeam())

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(domain.RoleManager))
		r.Post("/", h.HandleCreateTeam())
		r.Put("/{id}", h.HandleUpdateTeam())
		r.Put("/{id}/members", h.HandleUpdateMembers())
		r.Delete("/{id}", h.HandleDeleteTeam())
	})
}

// HandleListTeams godoc
// @Summary List teams
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Team
// @Router /teams [get]
func (h *TeamHandlers) HandleListTeams() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teams, err := h.service.List(r.Context())
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		if teams == nil {
			teams = []domain.Team{}
		}
		httpx.WriteJSON(w, http.StatusOK, teams)
	}
}

// HandleGetTeam godoc
// @Summary Get a team
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Param id path int true "Team ID"
// @Success 200 {object} domain.Team
// @Failure 404 {object} apperror.ErrorResponse "Team not found"
// @Router /teams/{id} [get]
func (h *TeamHandlers) HandleGetTeam() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpx.PathID(r, "id")
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		team, err := h.service.Get(r.Context(), id)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, team)
	}
}

// HandleCreateTeam godoc
// @Summary Create a team
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param team body teams.CreateTeamRequest true "New team"
// @Success 201 {object} domain.Team
// @Failure 400 {object} apperror.ErrorResponse "Team name required"
// @Failure 403 {object} apperror.ErrorResponse "Insufficient permissions"
// @Router /teams [post]
func (h *TeamHandlers) HandleCreateTeam() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateTeamRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, apperror.NewValidationError("Team name required", err))
			return
		}
		team, err := h.service.Create(r.Context(), req)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, team)
	}
}

// HandleUpdateTeam godoc
// @Summary Update a team
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Team ID"
// @Param team body teams.UpdateTeamRequest true "Fields to change"
// @Success 200 {object} domain.Team
// @Failure 403 {object} apperror.ErrorResponse "Insufficient permissions"
// @Failure 404 {object} apperror.ErrorResponse "Team not found"
// @Router /teams/{id} [put]
func (h *TeamHandlers) HandleUpdateTeam() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpx.PathID(r, "id")
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		var req UpdateTeamRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		team, err := h.service.Update(r.Context(), id, req)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, team)
	}
}

// HandleUpdateMembers godoc
// @Summary Assign users to a team
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Team ID"
// @Param members body teams.UpdateMembersRequest true "User ids to move into the team"
// @Success 200 {object} httpx.MessageResponse
// @Failure 403 {object} apperror.ErrorResponse "Insufficient permissions"
// @Failure 404 {object} apperror.ErrorResponse "Team not found"
// @Router /teams/{id}/members [put]
func (h *TeamHandlers) HandleUpdateMembers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpx.PathID(r, "id")
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		var req UpdateMembersRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		if err := h.service.UpdateMembers(r.Context(), id, req); err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteMessage(w, "Team members updated successfully")
	}
}

// HandleDeleteTeam godoc
// @Summary Delete a team
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Param id path int true "Team ID"
// @Success 200 {object} httpx.MessageResponse
// @Failure 403 {object} apperror.ErrorResponse "Insufficient permissions"
// @Failure 404 {object} apperror.ErrorResponse "Team not found"
// @Router /teams/{id} [delete]
func (h *TeamHandlers) HandleDeleteTeam() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpx.PathID(r, "id")
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		if err := h.service.Delete(r.Context(), id); err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteMessage(w, "Team deleted successfully")
	}
}
