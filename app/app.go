package app

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/Black-And-White-Club/scout-bot/app/eventbus"
	"github.com/Black-And-White-Club/scout-bot/app/modules/assignment"
	assignmentdb "github.com/Black-And-White-Club/scout-bot/app/modules/assignment/infrastructure/repositories"
	"github.com/Black-And-White-Club/scout-bot/app/modules/auth"
	"github.com/Black-And-White-Club/scout-bot/app/modules/leaderboard"
	leaderboarddb "github.com/Black-And-White-Club/scout-bot/app/modules/leaderboard/infrastructure/repositories"
	"github.com/Black-And-White-Club/scout-bot/app/modules/notification"
	notificationdb "github.com/Black-And-White-Club/scout-bot/app/modules/notification/infrastructure/repositories"
	"github.com/Black-And-White-Club/scout-bot/app/modules/scouting"
	scoutingdb "github.com/Black-And-White-Club/scout-bot/app/modules/scouting/infrastructure/repositories"
	"github.com/Black-And-White-Club/scout-bot/config"
	"github.com/Black-And-White-Club/scout-bot/internal/observability"
	"github.com/Black-And-White-Club/scout-bot/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Module is a long-running part of the application.
type Module interface {
	Run(ctx context.Context, wg *sync.WaitGroup)
	Close() error
}

// Stores holds the repositories injected into the modules.
type Stores struct {
	Scouting      scoutingdb.Repository
	Leaderboard   leaderboarddb.Repository
	Assignments   assignmentdb.Repository
	Subscriptions notificationdb.Repository
}

// NewStores builds every repository on db.
func NewStores(db bun.IDB) Stores {
	return Stores{
		Scouting:      scoutingdb.NewRepository(db),
		Leaderboard:   leaderboarddb.NewRepository(db),
		Assignments:   assignmentdb.NewRepository(db),
		Subscriptions: notificationdb.NewRepository(db),
	}
}

// App holds the shared infrastructure and the modules built on it.
type App struct {
	Config        *config.Config
	Observability observability.Observability
	DB            *bun.DB
	EventBus      eventbus.EventBus
	Router        *message.Router
	HTTPRouter    chi.Router

	AuthModule         *auth.Module
	ScoutingModule     *scouting.Module
	LeaderboardModule  *leaderboard.Module
	AssignmentModule   *assignment.Module
	NotificationModule *notification.Module
}

// NewApp connects to Postgres and the event bus and builds every module. The
// caller owns the returned App and must Close it.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	obs := observability.New(observability.Config{
		ServiceName:    "scout-bot",
		Environment:    cfg.Observability.Environment,
		MetricsEnabled: cfg.Observability.MetricsEnabled,
	})
	logger := obs.Logger

	db, err := OpenDB(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to connect to database", attr.Error(err))
		return nil, err
	}

	bus, err := eventbus.NewEventBus(ctx, cfg.NATS.URL, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, watermill.NewSlogLogger(logger))
	if err != nil {
		_ = bus.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to create message router: %w", err)
	}

	app := &App{
		Config:        cfg,
		Observability: obs,
		DB:            db,
		EventBus:      bus,
		Router:        router,
		HTTPRouter:    NewHTTPRouter(cfg, obs),
	}

	if err := app.initializeModules(ctx, NewStores(db)); err != nil {
		_ = app.Close()
		return nil, err
	}
	app.HTTPRouter.Get("/healthz", app.handleHealth)
	return app, nil
}

// OpenDB opens a bun handle over pgdriver and checks the connection.
func OpenDB(ctx context.Context, dsn string) (*bun.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("app.OpenDB: empty DSN")
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("app.OpenDB: %w", err)
	}
	return bun.NewDB(sqldb, pgdialect.New()), nil
}

func (app *App) initializeModules(ctx context.Context, stores Stores) error {
	obs := app.Observability
	app.AuthModule = auth.NewModule(ctx, app.Config, obs, app.HTTPRouter)
	requireAuth := app.AuthModule.RequireAuth()

	var err error
	app.ScoutingModule, err = scouting.NewScoutingModule(ctx, obs, stores.Scouting, app.DB, app.HTTPRouter, requireAuth)
	if err != nil {
		return fmt.Errorf("failed to initialize scouting module: %w", err)
	}

	app.LeaderboardModule, err = leaderboard.NewLeaderboardModule(ctx, app.Config, obs, stores.Leaderboard, app.DB, app.HTTPRouter, requireAuth)
	if err != nil {
		return fmt.Errorf("failed to initialize leaderboard module: %w", err)
	}

	app.AssignmentModule, err = assignment.NewAssignmentModule(ctx, obs, stores.Assignments, stores.Subscriptions,
		app.EventBus, app.DB, app.HTTPRouter, requireAuth)
	if err != nil {
		return fmt.Errorf("failed to initialize assignment module: %w", err)
	}

	app.NotificationModule, err = notification.NewNotificationModule(ctx, app.Config, obs, stores.Subscriptions,
		stores.Assignments, app.EventBus, app.Router, app.DB, app.HTTPRouter, requireAuth)
	if err != nil {
		return fmt.Errorf("failed to initialize notification module: %w", err)
	}

	obs.Logger.InfoContext(ctx, "All modules initialized")
	return nil
}

func (app *App) modules() []Module {
	var mods []Module
	if app.ScoutingModule != nil {
		mods = append(mods, app.ScoutingModule)
	}
	if app.LeaderboardModule != nil {
		mods = append(mods, app.LeaderboardModule)
	}
	if app.AssignmentModule != nil {
		mods = append(mods, app.AssignmentModule)
	}
	if app.NotificationModule != nil {
		mods = append(mods, app.NotificationModule)
	}
	return mods
}
