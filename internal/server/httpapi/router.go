// Package httpapi exposes the auth and vault services over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/securevault/internal/breach"
	"github.com/dmitrijs2005/securevault/internal/logging"
	"github.com/dmitrijs2005/securevault/internal/server/auth"
	"github.com/dmitrijs2005/securevault/internal/server/models"
	"github.com/dmitrijs2005/securevault/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type AuthService interface {
	Register(ctx context.Context, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	CheckBreach(ctx context.Context, password string) (breach.Verdict, error)
}

type TokenVerifier interface {
	VerifyAccess(token string) (*auth.Claims, error)
}

type VaultService interface {
	List(ctx context.Context, userID string) ([]services.EntryView, error)
	Create(ctx context.Context, userID string, in services.EntryInput) (*models.Entry, error)
	Update(ctx context.Context, userID, id string, in services.EntryInput) (*models.Entry, error)
	Delete(ctx context.Context, userID, id string) error
}

type AuditService interface {
	Report(ctx context.Context, userID string) (*services.AuditReport, error)
}

type BackupService interface {
	Backup(ctx context.Context, userID string) (*services.BackupResult, error)
}

// Deps are the services behind the API.
type Deps struct {
	Auth   AuthService
	Tokens TokenVerifier
	Vault  VaultService
	Audit  AuditService
	Backup BackupService
}

const requestTimeout = 30 * time.Second

// NewRouter builds the HTTP handler with all routes and middleware.
func NewRouter(d Deps, corsOrigins []string, l logging.Logger) http.Handler {
	h := &handler{
		auth:   d.Auth,
		vault:  d.Vault,
		audit:  d.Audit,
		backup: d.Backup,
		log:    l.With("module", "httpapi"),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.register)
			r.Post("/login", h.login)
			r.Post("/refresh", h.refresh)
			r.Post("/logout", h.logout)
		})
		r.Post("/breach-check", h.breachCheck)

		r.Route("/vault", func(r chi.Router) {
			r.Use(requireAccessToken(d.Tokens))
			r.Get("/", h.listEntries)
			r.Post("/", h.createEntry)
			r.Get("/audit", h.auditReport)
			r.Post("/backup", h.backupVault)
			r.Put("/{id}", h.updateEntry)
			r.Delete("/{id}", h.deleteEntry)
		})
	})

	return r
}
