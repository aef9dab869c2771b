package leaderboard

import (
	"context"
	"net/http"
	"sync"

	leaderboardservice "github.com/Black-And-White-Club/scout-bot/app/modules/leaderboard/application"
	leaderboardhandlers "github.com/Black-And-White-Club/scout-bot/app/modules/leaderboard/infrastructure/handlers"
	leaderboarddb "github.com/Black-And-White-Club/scout-bot/app/modules/leaderboard/infrastructure/repositories"
	"github.com/Black-And-White-Club/scout-bot/app/modules/leaderboard/infrastructure/teaminfo"
	"github.com/Black-And-White-Club/scout-bot/config"
	"github.com/Black-And-White-Club/scout-bot/internal/observability"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the leaderboard module.
type Module struct {
	LeaderboardService leaderboardservice.Service
	observability      observability.Observability
	cancelFunc         context.CancelFunc
}

// NewLeaderboardModule creates a new instance of the Leaderboard module.
func NewLeaderboardModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	repo leaderboarddb.Repository,
	db *bun.DB,
	httpRouter chi.Router,
	requireAuth func(http.Handler) http.Handler,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "leaderboard.NewLeaderboardModule called")

	var teams teaminfo.Lookup
	if cfg.TBA.APIKey != "" {
		teams = teaminfo.NewClient(teaminfo.Config{
			APIKey:  cfg.TBA.APIKey,
			BaseURL: cfg.TBA.BaseURL,
			Timeout: cfg.TBA.Timeout,
		})
	}

	service := leaderboardservice.NewLeaderboardService(repo, teams, logger, obs.ServiceMetrics(), obs.Tracer, db)
	handlers := leaderboardhandlers.NewLeaderboardHandlers(service, logger)

	if httpRouter != nil {
		httpRouter.Route("/api/leaderboard", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", handlers.HandleLeaderboard)
			r.Get("/export.xlsx", handlers.HandleExport)
			r.Get("/matches", handlers.HandleMatches)
			r.Get("/teams/{team}", handlers.HandleTeamStats)
			r.Get("/compare", handlers.HandleCompare)
			r.Get("/compare/chart.png", handlers.HandleCompareChart)
		})
	}

	return &Module{
		LeaderboardService: service,
		observability:      obs,
	}, nil
}

// Run starts the leaderboard module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting leaderboard module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Leaderboard module goroutine stopped")
}

// Close stops the leaderboard module and cleans up resources.
func (m *Module) Close() error {
	m.observability.Logger.Info("Stopping leaderboard module")
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	return nil
}
