// Package server wires the feature packages into one chi router.
//
// Services and handlers are built here from the stores handed in by main,
// the same manual dependency injection the rest of the code uses: nothing
// is global and tests can build the whole API on in-memory fakes.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/user/timemanager-go/auth"
	"github.com/user/timemanager-go/clocks"
	"github.com/user/timemanager-go/config"
	"github.com/user/timemanager-go/httpx"
	"github.com/user/timemanager-go/live"
	"github.com/user/timemanager-go/reports"
	"github.com/user/timemanager-go/teams"
	"github.com/user/timemanager-go/users"
)

// Pinger reports whether the database is reachable. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps is everything the router needs from main.
type Deps struct {
	Config  *config.AppConfig
	Log     *zap.Logger
	DB      Pinger
	Users   users.Store
	Teams   teams.Store
	Clocks  clocks.Store
	Revoker auth.Revoker
}

// NewRouter builds the HTTP handler for the whole API.
func NewRouter(d Deps) http.Handler {
	tokens := auth.NewTokenManager(*d.Config.Auth)
	authn := auth.JWTMiddleware(tokens, d.Revoker)

	authHandlers := auth.NewHandlers(auth.NewAuthService(d.Users, tokens, d.Revoker, d.Log))
	userHandlers := users.NewUserHandlers(users.NewUserService(d.Users, d.Log))
	teamHandlers := teams.NewTeamHandlers(teams.NewTeamService(d.Teams, d.Log))
	hub := live.NewHub(d.Log)
	clockHandlers := clocks.NewClockHandlers(clocks.NewClockService(d.Clocks, d.Users, hub, d.Log))
	reportHandlers := reports.NewHandlers(reports.NewReportService(d.Users, d.Clocks, d.Log))

	r := chi.NewRouter()

	// Chi requires all middleware to be registered before any routes.
	// RequestID comes first so the logger and error payloads can see it.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpx.RequestLogger(d.Log))
	r.Use(httpx.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.Config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(httpx.NotFound)
	r.MethodNotAllowed(httpx.NotFound)

	// `/swagger/doc.json` is the conventional path for the OpenAPI spec JSON file.
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api", func(r chi.Router) {
		// The event stream is long-lived, so it sits outside the request timeout.
		r.With(authn).Get("/live/clocks", hub.HandleClockStream())

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(d.Config.Server.RequestTimeout))
			r.Get("/health", handleHealth(d.DB))

			r.Route("/auth", func(r chi.Router) {
				authHandlers.RegisterRoutes(r, authn)
			})

			// Everything below requires a valid access token.
			r.Group(func(r chi.Router) {
				r.Use(authn)
				r.Route("/users", userHandlers.RegisterRoutes)
				r.Route("/teams", teamHandlers.RegisterRoutes)
				r.Route("/clocks", clockHandlers.RegisterRoutes)
				r.Route("/reports", reportHandlers.RegisterRoutes)
			})
		})
	})

	return r
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status    string    `json:"status" example:"ok"`
	Service   string    `json:"service" example:"timemanager"`
	Timestamp time.Time `json:"timestamp"`
}

// handleHealth godoc
// @Summary Health check
// @Description Reports whether the API and its database are up.
// @Tags health
// @Produce json
// @Success 200 {object} server.HealthResponse
// @Failure 503 {object} server.HealthResponse
// @Router /health [get]
func handleHealth(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{Status: "ok", Service: "timemanager", Timestamp: time.Now().UTC()}
		status := http.StatusOK

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			httpx.LoggerFrom(r.Context()).Warn("health check: database unreachable", zap.Error(err))
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
		httpx.WriteJSON(w, status, resp)
	}
}
