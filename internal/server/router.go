package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/firefly-oss/lib-session-manager/internal/access"
	sessionmiddleware "github.com/firefly-oss/lib-session-manager/internal/middleware"
	"github.com/firefly-oss/lib-session-manager/internal/roles"
	"github.com/firefly-oss/lib-session-manager/internal/services/session"
)

// RouterOptions controls the construction of the HTTP router.
// The zero value is valid; sensible defaults are applied where fields are not set.
type RouterOptions struct {
	SessionManager *session.Manager
	AccessRegistry *access.Registry
	RoleResolver   *roles.Resolver
	CORSOptions    *cors.Options
	Middleware     []func(http.Handler) http.Handler
	HealthHandler  http.HandlerFunc
	ExtraRoutes    func(chi.Router)
}

// DefaultCORSOptions returns the shared development CORS policy.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{
			"Content-Type",
			"Authorization",
			sessionmiddleware.HeaderPartyID,
			sessionmiddleware.HeaderSessionID,
			sessionmiddleware.HeaderSourceApplication,
		},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// NewRouter assembles a chi.Router with shared middleware, CORS policy,
// and the session-manager handlers mounted. The router can be tailored
// via RouterOptions for CLI usage, tests, or other entrypoints.
func NewRouter(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	// Baseline middleware shared across entrypoints.
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	corsCfg := DefaultCORSOptions()
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))

	r.Use(sessionmiddleware.SessionContext())

	// Apply custom middleware passed from the caller.
	for _, mw := range opts.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	if opts.SessionManager != nil {
		r.Route("/api/v1/sessions", func(r chi.Router) {
			r.Post("/", HandleCreateSession(opts.SessionManager))
			r.Get("/{sessionID}", HandleGetSession(opts.SessionManager))
			r.Delete("/{sessionID}", HandleInvalidateSession(opts.SessionManager))
			r.Post("/{sessionID}/refresh", HandleRefreshSession(opts.SessionManager))
			r.Get("/{sessionID}/valid", HandleSessionValidity(opts.SessionManager))
		})
	}

	if opts.AccessRegistry != nil {
		r.Post("/api/v1/access/check", HandleAccessCheck(opts.AccessRegistry))
	}

	if opts.RoleResolver != nil {
		r.Get("/api/v1/roles", HandleListRoles(opts.RoleResolver))
		r.Get("/api/v1/roles/{code}", HandleGetRole(opts.RoleResolver))

		// Admin endpoint mirroring the explicit cache invalidation hook.
		r.Post("/admin/roles/cache/refresh", HandleRoleCacheRefresh(opts.RoleResolver))
	}

	health := opts.HealthHandler
	if health == nil {
		health = defaultHealthHandler
	}
	r.Get("/health", health)

	if opts.ExtraRoutes != nil {
		opts.ExtraRoutes(r)
	}

	return r
}
