// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer — the composition root where the whole
// dependency chain is assembled:
//
//	sqlite.DB → repositories → AuthService / VCardService → handlers → routes
//
// Each layer only receives what it needs: services get repository interfaces
// (not the concrete sqlite.DB), handlers get services, and nothing below the
// handler layer ever sees HTTP.
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
	"github.com/go-chi/cors"

	"github.com/sakif/vcard-backend/internal/auth"
	"github.com/sakif/vcard-backend/internal/config"
	"github.com/sakif/vcard-backend/internal/handler"
	"github.com/sakif/vcard-backend/internal/middleware"
	sqliteRepo "github.com/sakif/vcard-backend/internal/repository/sqlite"
	"github.com/sakif/vcard-backend/internal/service"
	"github.com/sakif/vcard-backend/internal/session"
)

// Server owns the router, the database connection, and the background
// sweeper. The DB is closed and the sweeper stopped during graceful shutdown.
type Server struct {
	router  *chi.Mux
	config  *config.Config
	logger  *slog.Logger
	db      *sqliteRepo.DB
	sweeper *session.Sweeper // nil when sweeping is disabled
}

// New creates a Server with all dependencies wired.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
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

	if cfg.SessionSweep != "" {
		sweeper, err := session.NewSweeper(db.Sessions, cfg.SessionSweep, logger)
		if err != nil {
			db.Close()
			return nil, err
		}
		s.sweeper = sweeper
	}

	s.setupRoutes()

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	POST   /auth/register              → create account
//	POST   /auth/login                 → open session, returns bearer token
//	POST   /auth/logout                → delete session
//	GET    /healthz                    → liveness probe
//	POST   /vcard                      → create the caller's vCard        ┐
//	GET    /vcard                      → aggregate                        │
//	PUT    /vcard                      → partial update                   │
//	GET    /vcard/complete             → aggregate + owner identity       │ bearer
//	POST|GET /vcard/contacts           → child collection                 │ auth
//	PUT|DELETE /vcard/contacts/{id}    → child row (ownership-guarded)    │ required
//	   ... same shape for /vcard/social-links and /vcard/web-links        ┘
//
// MIDDLEWARE ORDER MATTERS: RequestID and RealIP first so the logger sees
// them, Recoverer before anything that can panic, CORS before routing so
// preflights are answered, auth only on the /vcard subtree.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// The frontend is a separate app on another origin.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// === Dependency wiring ===
	passwords := auth.NewPasswordService()
	authService := service.NewAuthService(s.db.Users, s.db.Sessions, passwords, s.config.SessionTTL, s.logger)
	vcardService := service.NewVCardService(s.db.VCards, s.db.Users, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	vcardHandler := handler.NewVCardHandler(vcardService, s.logger)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
	})

	s.router.Route("/vcard", func(r chi.Router) {
		r.Use(auth.RequireAuth(authService))

		r.Post("/", vcardHandler.HandleCreateVCard)
		r.Get("/", vcardHandler.HandleGetVCard)
		r.Put("/", vcardHandler.HandleUpdateVCard)
		r.Get("/complete", vcardHandler.HandleGetCompleteVCard)

		r.Post("/contacts", vcardHandler.HandleAddContact)
		r.Get("/contacts", vcardHandler.HandleGetContacts)
		r.Put("/contacts/{id}", vcardHandler.HandleUpdateContact)
		r.Delete("/contacts/{id}", vcardHandler.HandleDeleteContact)

		r.Post("/social-links", vcardHandler.HandleAddSocialLink)
		r.Get("/social-links", vcardHandler.HandleGetSocialLinks)
		r.Put("/social-links/{id}", vcardHandler.HandleUpdateSocialLink)
		r.Delete("/social-links/{id}", vcardHandler.HandleDeleteSocialLink)

		r.Post("/web-links", vcardHandler.HandleAddWebLink)
		r.Get("/web-links", vcardHandler.HandleGetWebLinks)
		r.Put("/web-links/{id}", vcardHandler.HandleUpdateWebLink)
		r.Delete("/web-links/{id}", vcardHandler.HandleDeleteWebLink)
	})
}

// Start starts the HTTP server and blocks until shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new connections, give in-flight requests 30s to finish
// 2. Stop the session sweeper (waits for a running sweep)
// 3. Close the database (flushes WAL, releases the file lock)
func (s *Server) Start() error {
	defer s.db.Close()

	if s.sweeper != nil {
		s.sweeper.Start()
		defer s.sweeper.Stop()
	}

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
