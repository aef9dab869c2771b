package scouting

import (
	"context"
	"net/http"
	"sync"

	scoutingservice "github.com/Black-And-White-Club/scout-bot/app/modules/scouting/application"
	scoutinghandlers "github.com/Black-And-White-Club/scout-bot/app/modules/scouting/infrastructure/handlers"
	scoutingdb "github.com/Black-And-White-Club/scout-bot/app/modules/scouting/infrastructure/repositories"
	"github.com/Black-And-White-Club/scout-bot/internal/observability"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the scouting module.
type Module struct {
	ScoutingService scoutingservice.Service
	handlers        scoutinghandlers.Handlers
	observability   observability.Observability
	cancelFunc      context.CancelFunc
}

// NewScoutingModule wires the admission service and mounts its routes under
// /api/scouting. Every route requires an authenticated scout.
func NewScoutingModule(
	ctx context.Context,
	obs observability.Observability,
	repo scoutingdb.Repository,
	db *bun.DB,
	httpRouter chi.Router,
	requireAuth func(http.Handler) http.Handler,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "Initializing scouting module")

	service := scoutingservice.NewScoutingService(repo, logger, obs.ServiceMetrics(), obs.Tracer, db)
	handlers := scoutinghandlers.NewScoutingHandlers(service, logger)

	if httpRouter != nil {
		httpRouter.Route("/api/scouting", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/entries", handlers.HandleSubmit)
			r.Get("/entries/{id}", handlers.HandleGet)
			r.Put("/entries/{id}", handlers.HandleUpdate)
			r.Delete("/entries/{id}", handlers.HandleDelete)
			r.Get("/teams/{team}/entries", handlers.HandleListByTeam)
			r.Get("/teams/{team}/has-data", handlers.HandleHasTeamData)
		})
	}

	return &Module{
		ScoutingService: service,
		handlers:        handlers,
		observability:   obs,
	}, nil
}

// Run blocks until ctx is cancelled. Admission runs on request goroutines.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting scouting module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Scouting module goroutine stopped")
}

// Close stops the scouting module.
func (m *Module) Close() error {
	m.observability.Logger.Info("Stopping scouting module")
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	return nil
}
