// Package server exposes the tournament over a JSON HTTP API. Clients hold
// an opaque session token; each session carries its own access state and
// registration editor.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"sportsreg/internal/access"
	"sportsreg/internal/config"
	"sportsreg/internal/metrics"
	"sportsreg/internal/tournament"
)

const (
	sessionHeader = "X-Session-Token"
	sessionTTL    = 12 * time.Hour
	maxSessions   = 4096
)

type Server struct {
	cfg      config.Config
	svc      *tournament.Service
	ctl      *access.Controller
	sessions *sessionRegistry
	validate *validator.Validate
	router   *chi.Mux
	server   *http.Server
}

func New(cfg config.Config, svc *tournament.Service) *Server {
	s := &Server{
		cfg:      cfg,
		svc:      svc,
		ctl:      access.NewController(cfg.AdminSecret, svc),
		sessions: newSessionRegistry(maxSessions, sessionTTL, svc.NewEditor),
		validate: validator.New(),
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	s.router.Handle("/metrics", metrics.Handler())

	// signed link, usable without a session
	s.router.Get("/export/unit.csv", s.handleSignedExport)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/session", s.handleNewSession)

		r.Group(func(r chi.Router) {
			r.Use(s.withSession)

			r.Get("/session", s.handleWhoAmI)
			r.Delete("/session", s.handleLogout)
			r.Post("/session/admin", s.handleAdminLogin)
			r.Post("/session/unit", s.handleUnitLogin)

			r.With(s.require(access.OpViewOverview)).Get("/overview", s.handleOverview)
			r.With(s.require(access.OpViewResults)).Get("/results", s.handleResults)

			r.Route("/admin", func(r chi.Router) {
				r.With(s.require(access.OpManageSettings)).Get("/settings", s.handleGetSettings)
				r.With(s.require(access.OpManageSettings)).Put("/settings", s.handlePutSettings)

				r.Group(func(r chi.Router) {
					r.Use(s.require(access.OpManageDisciplines))
					r.Get("/disciplines", s.handleListDisciplines)
					r.Post("/disciplines", s.handleCreateDiscipline)
					r.Delete("/disciplines/{id}", s.handleDeleteDiscipline)
				})
				r.Group(func(r chi.Router) {
					r.Use(s.require(access.OpManageContents))
					r.Get("/contents", s.handleListContents)
					r.Post("/contents", s.handleCreateContent)
					r.Delete("/contents/{id}", s.handleDeleteContent)
				})
				r.Group(func(r chi.Router) {
					r.Use(s.require(access.OpManageUnits))
					r.Get("/units", s.handleListUnits)
					r.Post("/units", s.handleCreateUnit)
					r.Delete("/units/{id}", s.handleDeleteUnit)
					r.Get("/units/{id}/export-link", s.handleAdminExportLink)
				})
				r.Group(func(r chi.Router) {
					r.Use(s.require(access.OpManageSystems))
					r.Get("/systems", s.handleListSystems)
					r.Post("/systems", s.handleCreateSystem)
					r.Delete("/systems/{id}", s.handleDeleteSystem)
				})
				r.With(s.require(access.OpEnterResults)).Put("/registrations/{id}/rank", s.handleSetRank)
				r.With(s.require(access.OpDeleteRegistrations)).Delete("/registrations/{id}", s.handleAdminDeleteRegistration)
			})

			r.Route("/unit", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(s.require(access.OpEditRegistrations))
					r.Get("/catalog", s.handleCatalog)
					r.Get("/systems", s.handleListSystems)
					r.Get("/registrations", s.handleUnitRegistrations)
					r.Post("/registrations", s.handleSubmitRegistration)
					r.Post("/registrations/{id}/edit", s.handleBeginEdit)
					r.Delete("/edit", s.handleCancelEdit)
					r.Delete("/registrations/{id}", s.handleUnitDeleteRegistration)
				})
				r.Group(func(r chi.Router) {
					r.Use(s.require(access.OpExportOwn))
					r.Get("/export.csv", s.handleUnitExport)
					r.Get("/export-link", s.handleUnitExportLink)
				})
			})
		})
	})
}

func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	slog.Info("HTTP listening", "addr", addr)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the handler tree; tests drive it through httptest.
func (s *Server) Router() http.Handler {
	return s.router
}
