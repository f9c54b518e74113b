// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "composition root" — the one place the whole
// dependency chain is assembled:
//
//	sqlite.DB → repositories → PasswordHasher + SessionService
//	          → AuthService / PatientService / StatsService
//	          → handlers → routes
//
// There is no hidden process-wide state: everything the request path needs
// hangs off the Server struct built once in New.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tahmid-dev/clinic-records/internal/auth"
	"github.com/tahmid-dev/clinic-records/internal/handler"
	"github.com/tahmid-dev/clinic-records/internal/middleware"
	"github.com/tahmid-dev/clinic-records/internal/model"
	sqliteRepo "github.com/tahmid-dev/clinic-records/internal/repository/sqlite"
	"github.com/tahmid-dev/clinic-records/internal/service"
)

// Config holds server configuration, loaded from the environment in main.
type Config struct {
	Port         int
	DBPath       string // path to the SQLite database file
	SecureCookie bool   // Secure flag on the session cookie; true outside local dev
}

// Server owns the router, the database connection, and the config. The DB
// is closed during graceful shutdown in Start.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server with all dependencies wired.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	s.setupRoutes()

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	POST   /auth/signup               register + login (sets cookie)
//	POST   /auth/login                login (sets cookie)
//	POST   /auth/logout               logout (clears cookie)
//	GET    /auth/me                   current identity
//	GET    /api/patients              list          (any authenticated)
//	GET    /api/patients/{id}         read          (any authenticated)
//	POST   /api/patients              create        (admin, doctor, nurse)
//	PUT    /api/patients/{id}         update        (admin, doctor, nurse)
//	DELETE /api/patients/{id}         delete        (admin)
//	GET    /api/patients/{id}/notes   list notes    (any authenticated)
//	POST   /api/patients/{id}/notes   add note      (admin, doctor, nurse)
//	GET    /api/stats                 aggregates    (any authenticated)
//
// MIDDLEWARE ORDER MATTERS: RequestID → RealIP → Recoverer → request logger
// → identity resolution. Identity runs globally so every handler — including
// logout on a dead session — sees the same resolved (or anonymous) context.
func (s *Server) setupRoutes() {
	sessionService := auth.NewSessionService(
		s.db.Sessions(), s.db.Users(), s.config.SecureCookie, s.logger)
	hasher := auth.NewPasswordHasher()

	authService := service.NewAuthService(s.db.Users(), sessionService, hasher, s.logger)
	patientService := service.NewPatientService(s.db.Patients(), s.db.Patients(), s.logger)
	statsService := service.NewStatsService(s.db.Patients(), s.logger)

	authHandler := handler.NewAuthHandler(authService, sessionService, s.logger)
	patientHandler := handler.NewPatientHandler(patientService, s.logger)
	statsHandler := handler.NewStatsHandler(statsService, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(auth.WithIdentity(sessionService))

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.HandleSignup)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
		r.Get("/me", authHandler.HandleMe)
	})

	clinicians := []model.Role{model.RoleAdmin, model.RoleDoctor, model.RoleNurse}

	s.router.Route("/api", func(r chi.Router) {
		// Readable by any authenticated staff member.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole())
			r.Get("/patients", patientHandler.HandleList)
			r.Get("/patients/{id}", patientHandler.HandleGetByID)
			r.Get("/patients/{id}/notes", patientHandler.HandleListNotes)
			r.Get("/stats", statsHandler.HandleStats)
		})

		// Writable by clinicians.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(clinicians...))
			r.Post("/patients", patientHandler.HandleCreate)
			r.Put("/patients/{id}", patientHandler.HandleUpdate)
			r.Post("/patients/{id}/notes", patientHandler.HandleAddNote)
		})

		// Destructive operations are admin-only.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(model.RoleAdmin))
			r.Delete("/patients/{id}", patientHandler.HandleDelete)
		})
	})
}

// Router exposes the configured router, mainly for tests that want to drive
// the full middleware chain with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests (30s),
// close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.Bool("secureCookie", s.config.SecureCookie),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
