// Package web serves the role dashboards and the JSON API behind them.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/timetable-admin/internal/api"
	"github.com/JonMunkholm/timetable-admin/internal/auth"
	"github.com/JonMunkholm/timetable-admin/internal/config"
	"github.com/JonMunkholm/timetable-admin/internal/core"
	mw "github.com/JonMunkholm/timetable-admin/internal/web/middleware"
)

// Deps are the collaborators a Server needs.
type Deps struct {
	Config  *config.Config
	Service *core.Service
	Auth    *auth.Manager
	Backend *api.Backend
}

// Server is the HTTP server.
type Server struct {
	cfg     *config.Config
	service *core.Service
	auth    *auth.Manager
	backend *api.Backend
	router  *chi.Mux
	server  *http.Server

	limiters []*mw.RateLimiter
}

// NewServer wires the router.
func NewServer(d Deps) *Server {
	s := &Server{
		cfg:     d.Config,
		service: d.Service,
		auth:    d.Auth,
		backend: d.Backend,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	s.server = &http.Server{
		Addr:         d.Config.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  d.Config.Server.ReadTimeout,
		WriteTimeout: d.Config.Server.WriteTimeout,
		IdleTimeout:  d.Config.Server.IdleTimeout,
	}
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(mw.SecurityHeaders(s.cfg.Security))

	if s.cfg.Rate.Enabled {
		s.router.Use(s.newLimiter(s.cfg.Rate.RequestsPerMinute).Middleware)
	}

	s.router.Use(mw.Session(s.auth, s.cfg.Auth.CookieName))
}

func (s *Server) newLimiter(perMinute int) *mw.RateLimiter {
	rl := mw.NewRateLimiter(perMinute, time.Minute)
	s.limiters = append(s.limiters, rl)
	return rl
}

// importGuard throttles the upload endpoints separately from everything else.
func (s *Server) importGuard() func(http.Handler) http.Handler {
	if !s.cfg.Rate.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return s.newLimiter(s.cfg.Rate.ImportLimit).Middleware
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	timeout := chimw.Timeout(s.cfg.Server.RequestTimeout)
	imports := s.importGuard()

	// Pages
	s.router.Group(func(r chi.Router) {
		r.Use(timeout)
		r.Get("/login", s.handleLoginPage)
		r.Post("/login", s.handleLogin)
		r.Post("/signup", s.handleSignup)
		r.Post("/logout", s.handleLogout)
		r.With(mw.RequireSession).Get("/", s.handleDashboard)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.With(timeout).Get("/health", s.handleHealth)
		r.With(timeout).Post("/auth/refresh", s.handleRefresh)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireSession)

			// Imports run under the service's own timeout.
			r.With(imports).Post("/panels/{key}/import", s.handleImport)
			r.With(imports).Post("/panels/{key}/preview", s.handlePreview)

			r.Group(func(r chi.Router) {
				r.Use(timeout)

				r.Get("/me", s.handleMe)
				r.Get("/panels", s.handleListPanels)
				r.Get("/panels/{key}/records", s.handleListRecords)
				r.Post("/panels/{key}/records", s.handleCreateRecord)
				r.Delete("/panels/{key}/records/{id}", s.handleDeleteRecord)
				r.Get("/panels/{key}/template", s.handleTemplate)

				r.With(mw.RequireRole(auth.RoleAdmin)).Get("/imports", s.handleImportHistory)

				r.With(mw.RequireRole(auth.RoleAdmin, auth.RoleStudent)).Post("/registration/validate", s.handleValidateRegistration)
				r.With(mw.RequireRole(auth.RoleAdmin, auth.RoleStudent)).Post("/registration/enroll", s.handleEnroll)
				r.With(mw.RequireRole(auth.RoleAdmin, auth.RoleFaculty)).Post("/optimizer/reassign", s.handleReassign)
				r.With(mw.RequireRole(auth.RoleAdmin)).Post("/optimizer/approve", s.handleApprove)
				r.With(mw.RequireRole(auth.RoleAdmin)).Get("/optimizer/results", s.handleOptimizationResults)
				r.Post("/assistant/chat", s.handleChat)
			})
		})
	})
}

// Start listens until Shutdown is called. Rate limiter housekeeping stops
// with ctx.
func (s *Server) Start(ctx context.Context) error {
	for _, rl := range s.limiters {
		go rl.Run(ctx)
	}

	slog.Info("starting server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
