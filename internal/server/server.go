package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/claude/workoutmap/internal/app"
	"github.com/claude/workoutmap/internal/view"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	app    *app.App
	hub    *view.Hub
	log    *slog.Logger
	apiKey string
	whois  WhoIser
	router chi.Router
}

// New creates a new Server with all routes configured. Event endpoints
// require apiKey in X-API-Key when it is non-empty.
func New(a *app.App, hub *view.Hub, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		app:    a,
		hub:    hub,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identify)

	// Interaction events (API key required when configured)
	s.router.Route("/api/v1/events", func(r chi.Router) {
		if s.apiKey != "" {
			r.Use(APIKeyAuth(s.apiKey))
		}
		r.Post("/location", s.handleLocation)
		r.Post("/type", s.handleTypeToggle)
		r.Post("/submit", s.handleSubmit)
		r.Post("/cancel", s.handleCancel)
		r.Post("/select", s.handleSelect)
		r.Post("/reset", s.handleReset)
	})

	// Read endpoints (no auth, tsnet handles access)
	s.router.Get("/api/v1/me", s.handleMe)
	s.router.Get("/api/v1/state", s.handleState)
	s.router.Get("/api/v1/workouts", s.handleListWorkouts)
	s.router.Get("/api/v1/workouts/{id}", s.handleGetWorkout)
	s.router.Get("/api/v1/render", s.handleRender)
	s.router.Get("/api/v1/commands", s.handleCommands)

	s.router.Handle("/metrics", promhttp.Handler())
}

// SetMCP mounts an MCP streamable HTTP handler at /mcp.
func (s *Server) SetMCP(h http.Handler) {
	s.router.Handle("/mcp", h)
}

// SetTailscale resolves request identities through the tailnet instead of
// the local dev identity.
func (s *Server) SetTailscale(w WhoIser) {
	s.whois = w
}
