// Package auth, as part of the authentication module.
// This file, `handlers.go`, is responsible for handling HTTP requests related
// to authentication. It is the "Controller" layer: decode and validate the
// DTO, call AuthService, write the response.
package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/timemanager-go/apperror"
	"github.com/user/timemanager-go/httpx"
)

// Handlers wraps the AuthService to provide HTTP handlers.
type Handlers struct {
	service *AuthService
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *AuthService) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes mounts the public auth endpoints and, behind authn, logout.
func (h *Handlers) RegisterRoutes(r chi.Router, authn func(http.Handler) http.Handler) {
	r.Post("/register", h.HandleRegister())
	r.Post("/login", h.HandleLogin())
	r.Post("/refresh", h.HandleRefresh())
	r.With(authn).Post("/logout", h.HandleLogout())
}

// The `godoc` comments (`@Summary`, `@Tags`, ...) are read by `swaggo/swag`
// to generate the OpenAPI document served under /swagger.

// HandleRegister godoc
// @Summary User Registration
// @Description Registers a new employee account and returns a token pair.
// @Tags Auth
// @Accept json
// @Produce json
// @Param registerBody body auth.RegisterRequest true "User registration details"
// @Success 201 {object} auth.AuthResponse "User created successfully"
// @Failure 400 {object} apperror.ErrorResponse "Invalid input, or username/email already used"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /auth/register [post]
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		resp, err := h.service.Register(r.Context(), req)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, resp)
	}
}

// HandleLogin godoc
// @Summary User Login
// @Description Logs in with username or email and returns a token pair.
// @Tags Auth
// @Accept json
// @Produce json
// @Param loginBody body auth.LoginRequest true "User login credentials"
// @Success 200 {object} auth.AuthResponse "Login successful"
// @Failure 400 {object} apperror.ErrorResponse "Missing fields"
// @Failure 401 {object} apperror.ErrorResponse "Invalid credentials"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /auth/login [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, apperror.NewValidationError("Username/email and password required", err))
			return
		}

		resp, err := h.service.Login(r.Context(), req)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, resp)
	}
}

// HandleRefresh godoc
// @Summary Refresh Access Token
// @Description Exchanges a refresh token for a new token pair. The old refresh token stops working.
// @Tags Auth
// @Accept json
// @Produce json
// @Param refreshBody body auth.RefreshRequest true "Refresh token"
// @Success 200 {object} auth.RefreshResponse "Tokens refreshed"
// @Failure 400 {object} apperror.ErrorResponse "Missing token, or not a refresh token"
// @Failure 401 {object} apperror.ErrorResponse "Invalid or expired refresh token"
// @Router /auth/refresh [post]
func (h *Handlers) HandleRefresh() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RefreshRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, apperror.NewValidationError("Refresh token required", err))
			return
		}

		resp, err := h.service.Refresh(r.Context(), req.RefreshToken)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, resp)
	}
}

// HandleLogout godoc
// @Summary Logout
// @Description Revokes the bearer token, and the refresh token if one is given.
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param logoutBody body auth.LogoutRequest false "Refresh token to revoke"
// @Success 200 {object} httpx.MessageResponse "Logged out"
// @Failure 401 {object} apperror.ErrorResponse "Missing or invalid token"
// @Router /auth/logout [post]
func (h *Handlers) HandleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			httpx.WriteError(w, r, apperror.NewAuthError("User not authenticated", nil))
			return
		}

		// The body is optional here, so an empty one is fine.
		var req LogoutRequest
		if r.ContentLength != 0 {
			if err := httpx.DecodeJSON(r, &req); err != nil {
				httpx.WriteError(w, r, err)
				return
			}
		}

		if err := h.service.Logout(r.Context(), claims, req.RefreshToken); err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteMessage(w, "Logged out successfully")
	}
}
