// Package users encapsulates all functionality related to user account management.
// This file, `handlers.go`, is responsible for handling HTTP requests related to users.
// It acts as the "Controller" layer: it pulls the requester out of the context,
// decodes the body, and hands off to UserService.
package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/timemanager-go/auth"
	"github.com/user/timemanager-go/domain"
	"github.com/user/timemanager-go/httpx"
)

// UserHandlers provides HTTP handlers for user management.
type UserHandlers struct {
	service *UserService
}

// NewUserHandlers creates new UserHandlers.
func NewUserHandlers(service *UserService) *UserHandlers {
	return &UserHandlers{service: service}
}

// RegisterRoutes mounts the user routes. The caller is expected to have
// applied the JWT middleware to r.
func (h *UserHandlers) RegisterRoutes(r chi.Router) {
	managerOnly := auth.RequireRole(domain.RoleManager)

	r.With(managerOnly).Get("/", h.HandleListUsers())
	r.With(managerOnly).Post("/", h.HandleCreateUser())
	r.Get("/{id}", h.HandleGetUser())
	r.Put("/{id}", h.HandleUpdateUser())
	r.With(managerOnly).Delete("/{id}", h.HandleDeleteUser())
}

// HandleListUsers godoc
// @Summary List users
// @Description Lists every user. Managers only.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.User
// @Failure 401 {object} apperror.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} apperror.ErrorResponse "Insufficient permissions"
// @Router /users [get]
func (h *UserHandlers) HandleListUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := h.service.List(r.Context())
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		if users == nil {
			users = []domain.User{}
		}
		httpx.WriteJSON(w, http.StatusOK, users)
	}
}

// HandleGetUser godoc
// @Summary Get a user
// @Description Returns one user. Employees may only read their own account.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} domain.User
// @Failure 400 {object} apperror.ErrorResponse "Invalid id"
// @Failure 403 {object} apperror.ErrorResponse "Insufficient permissions"
// @Failure 404 {object} apperror.ErrorResponse "User not found"
// @Router /users/{id} [get]
func (h *UserHandlers) HandleGetUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requester, ok := auth.MustRequester(w, r)
		if !ok {
			return
		}
		id, err := httpx.PathID(r, "id")
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		user, err := h.service.Get(r.Context(), requester, id)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, user)
	}
}

// HandleCreateUser godoc
// @Summary Create a user
// @Description Creates a user with any role. Managers only.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user body users.CreateUserRequest true "New user"
// @Success 201 {object} domain.User
// @Failure 400 {object} apperror.ErrorResponse "Invalid input"
// @Failure 403 {object} apperror.ErrorResponse "Insufficient permissions"
// @Failure 409 {object} apperror.ErrorResponse "Email or username already used"
// @Router /users [post]
func (h *UserHandlers) HandleCreateUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateUserRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		user, err := h.service.Create(r.Context(), req)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, user)
	}
}

// HandleUpdateUser godoc
// @Summary Update a user
// @Description Partially updates a user. Employees may only update themselves and may not change roles.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param user body users.UpdateUserRequest true "Fields to change"
// @Success 200 {object} domain.User
// @Failure 400 {object} apperror.ErrorResponse "Invalid input"
// @Failure 403 {object} apperror.ErrorResponse "Insufficient permissions"
// @Failure 404 {object} apperror.ErrorResponse "User not found"
// @Failure 409 {object} apperror.ErrorResponse "Email or username already used"
// @Router /users/{id} [put]
func (h *UserHandlers) HandleUpdateUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requester, ok := auth.MustRequester(w, r)
		if !ok {
			return
		}
		id, err := httpx.PathID(r, "id")
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		var req UpdateUserRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		user, err := h.service.Update(r.Context(), requester, id, req)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, user)
	}
}

// HandleDeleteUser godoc
// @Summary Delete a user
// @Description Deletes a user and their clock events. Managers only.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} httpx.MessageResponse
// @Failure 403 {object} apperror.ErrorResponse "Insufficient permissions"
// @Failure 404 {object} apperror.ErrorResponse "User not found"
// @Router /users/{id} [delete]
func (h *UserHandlers) HandleDeleteUser() http.HandlerFunc {
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
		httpx.WriteMessage(w, "User deleted successfully")
	}
}
