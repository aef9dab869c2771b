package auth

import (
	"context"
	"net/http"

	authhandlers "github.com/Black-And-White-Club/scout-bot/app/modules/auth/infrastructure/handlers"
	authjwt "github.com/Black-And-White-Club/scout-bot/app/modules/auth/infrastructure/jwt"
	"github.com/Black-And-White-Club/scout-bot/config"
	"github.com/Black-And-White-Club/scout-bot/internal/observability"
	"github.com/go-chi/chi/v5"
)

// Module represents the identity module. Tokens are issued elsewhere; this module
// only validates them.
type Module struct {
	provider    authjwt.Provider
	requireAuth func(http.Handler) http.Handler
}

// NewModule creates a new auth module and registers its HTTP routes.
func NewModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	httpRouter chi.Router,
) *Module {
	logger := obs.Logger
	logger.InfoContext(ctx, "Initializing auth module")

	provider := authjwt.NewProvider(cfg.JWT.Secret, cfg.JWT.Issuer)
	requireAuth := authhandlers.AuthMiddleware(provider, logger)

	if httpRouter != nil {
		limiter := authhandlers.NewRateLimiter(5, 10)
		httpRouter.Route("/api/auth", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(authhandlers.RateLimitMiddleware(limiter))
			r.Get("/me", authhandlers.HandleMe)
		})
	}

	return &Module{
		provider:    provider,
		requireAuth: requireAuth,
	}
}

// RequireAuth is the middleware other modules mount in front of their routes.
func (m *Module) RequireAuth() func(http.Handler) http.Handler {
	return m.requireAuth
}

// Provider returns the token provider.
func (m *Module) Provider() authjwt.Provider {
	return m.provider
}
