package transport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rpggio/stepwise/internal/auth"
)

// Config wires the API's collaborators.
type Config struct {
	Accounts AccountService
	Catalog  CatalogService
	Progress ProgressService
	Journal  JournalService
	Tokens   *auth.TokenManager
	DB       Pinger
	// MCP and Metrics are mounted when non-nil.
	MCP     http.Handler
	Metrics http.Handler
	Logger  *slog.Logger
}

// Server holds the API handlers.
type Server struct {
	accounts AccountService
	catalog  CatalogService
	progress ProgressService
	journal  JournalService
	tokens   *auth.TokenManager
	db       Pinger
	logger   *slog.Logger
}

// NewServer creates the HTTP router with middleware.
func NewServer(cfg Config) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	srv := &Server{
		accounts: cfg.Accounts,
		catalog:  cfg.Catalog,
		progress: cfg.Progress,
		journal:  cfg.Journal,
		tokens:   cfg.Tokens,
		db:       cfg.DB,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestMetrics(logger))

	r.Get("/health", srv.handleHealth)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}
	if cfg.MCP != nil {
		r.Handle("/mcp", cfg.MCP)
		r.Handle("/mcp/*", cfg.MCP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", srv.handleSignup)
		r.Post("/auth/login", srv.handleLogin)
		r.Get("/activities", srv.handleListActivities)
		r.Get("/activities/{id}", srv.handleGetActivity)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(cfg.Tokens))

			r.Post("/activities", srv.handleCreateActivity)
			r.Patch("/activities/{id}", srv.handleUpdateActivity)

			r.Route("/users/me", func(r chi.Router) {
				r.Get("/", srv.handleGetMe)
				r.Put("/", srv.handleUpdateMe)
				r.Put("/password", srv.handleUpdatePassword)
				r.Delete("/", srv.handleDeleteMe)
			})

			r.Route("/user-activities", func(r chi.Router) {
				r.Get("/", srv.handleListUserActivities)
				r.Post("/", srv.handleAddActivity)
				r.Get("/stats", srv.handleStats)
				r.Get("/history", srv.handleHistory)
				r.Get("/{id}", srv.handleGetUserActivity)
				r.Delete("/{id}", srv.handleRemove)
				r.Post("/{id}/start", srv.handleStart)
				r.Post("/{id}/steps/{step}/toggle", srv.handleToggleStep)
				r.Post("/{id}/complete", srv.handleComplete)
				r.Post("/{id}/skip", srv.handleSkip)
				r.Post("/{id}/resume", srv.handleResume)
			})
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Error("health check failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "Database connected successfully",
	})
}

// session returns the caller's session. auth.Middleware guarantees it is set
// on every authenticated route.
func session(r *http.Request) *auth.Session {
	s, _ := auth.FromContext(r.Context())
	return s
}
