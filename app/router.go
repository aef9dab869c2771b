package app

import (
	"context"
	"net/http"
	"time"

	"github.com/Black-And-White-Club/scout-bot/config"
	"github.com/Black-And-White-Club/scout-bot/internal/httpx"
	"github.com/Black-And-White-Club/scout-bot/internal/observability"
	"github.com/Black-And-White-Club/scout-bot/internal/observability/attr"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHTTPRouter returns the chi router every module mounts its routes on.
func NewHTTPRouter(cfg *config.Config, obs observability.Observability) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httpx.CORS(cfg.HTTP.AllowedOrigins))

	if obs.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{Registry: obs.Registry}))
	}
	return r
}

// handleHealth reports whether the database and the job queue answer.
func (app *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := app.HealthCheck(ctx); err != nil {
		app.Observability.Logger.WarnContext(ctx, "Health check failed", attr.Error(err))
		httpx.WriteError(w, http.StatusServiceUnavailable, "unhealthy", "unavailable")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HealthCheck pings the database and the notification queue.
func (app *App) HealthCheck(ctx context.Context) error {
	if err := app.DB.PingContext(ctx); err != nil {
		return err
	}
	if app.NotificationModule != nil {
		return app.NotificationModule.HealthCheck(ctx)
	}
	return nil
}
