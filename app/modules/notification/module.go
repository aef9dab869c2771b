package notification

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	authhandlers "github.com/Black-And-White-Club/scout-bot/app/modules/auth/infrastructure/handlers"
	notificationservice "github.com/Black-And-White-Club/scout-bot/app/modules/notification/application"
	notificationhandlers "github.com/Black-And-White-Club/scout-bot/app/modules/notification/infrastructure/handlers"
	"github.com/Black-And-White-Club/scout-bot/app/modules/notification/infrastructure/push"
	notificationqueue "github.com/Black-And-White-Club/scout-bot/app/modules/notification/infrastructure/queue"
	notificationdb "github.com/Black-And-White-Club/scout-bot/app/modules/notification/infrastructure/repositories"
	notificationrouter "github.com/Black-And-White-Club/scout-bot/app/modules/notification/infrastructure/router"
	"github.com/Black-And-White-Club/scout-bot/config"
	"github.com/Black-And-White-Club/scout-bot/internal/observability"
	"github.com/Black-And-White-Club/scout-bot/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
	"golang.org/x/time/rate"
)

// Module represents the notification module.
type Module struct {
	NotificationService notificationservice.Service
	Scheduler           *notificationservice.Scheduler
	NotificationRouter  *notificationrouter.NotificationRouter
	queue               *notificationqueue.Service
	observability       observability.Observability
	stopTimeout         time.Duration
	cancelFunc          context.CancelFunc
}

// NewNotificationModule wires push delivery, the reminder scheduler, the River
// queue for immediate notifications, the assignment event handlers on router and
// the /api/notifications routes. Without a database the River queue is skipped and
// assignment events are delivered in the handler.
func NewNotificationModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	repo notificationdb.Repository,
	assignments notificationservice.AssignmentLookup,
	subscriber message.Subscriber,
	router *message.Router,
	db *bun.DB,
	httpRouter chi.Router,
	requireAuth func(http.Handler) http.Handler,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "Initializing notification module")

	if cfg.WebPush.PublicKey == "" || cfg.WebPush.PrivateKey == "" {
		logger.WarnContext(ctx, "VAPID keys not configured, push delivery will fail")
	}
	sender := push.NewWebPushSender(push.Config{
		PublicKey:  cfg.WebPush.PublicKey,
		PrivateKey: cfg.WebPush.PrivateKey,
		Subject:    cfg.WebPush.Subject,
		TTL:        cfg.WebPush.TTL,
	}, logger)

	service := notificationservice.NewNotificationService(repo, assignments, sender, cfg.WebPush.PublicKey,
		logger, obs.ServiceMetrics(), obs.Tracer, db)

	schedulerCfg := notificationservice.SchedulerConfig{
		Interval:     cfg.Scheduler.Interval,
		ErrorBackoff: cfg.Scheduler.ErrorBackoff,
		StopTimeout:  cfg.Scheduler.StopTimeout,
	}
	scheduler := notificationservice.NewScheduler(repo, assignments, sender, schedulerCfg, logger, obs.SchedulerMetrics())

	module := &Module{
		NotificationService: service,
		Scheduler:           scheduler,
		observability:       obs,
		stopTimeout:         cfg.Scheduler.StopTimeout,
	}
	if module.stopTimeout <= 0 {
		module.stopTimeout = 5 * time.Second
	}

	var enqueuer notificationrouter.Enqueuer
	if db != nil && cfg.Postgres.DSN != "" {
		queue, err := notificationqueue.NewService(ctx, logger, cfg.Postgres.DSN, obs.ServiceMetrics(), service)
		if err != nil {
			return nil, fmt.Errorf("failed to create notification queue: %w", err)
		}
		module.queue = queue
		enqueuer = queue
	}

	if router != nil && subscriber != nil {
		nr := notificationrouter.NewNotificationRouter(logger, router, subscriber, obs.Tracer, obs.Registry)
		if err := nr.Configure(ctx, notificationrouter.NewEventHandlers(enqueuer, service, logger)); err != nil {
			return nil, fmt.Errorf("failed to configure notification router: %w", err)
		}
		module.NotificationRouter = nr
	}

	if httpRouter != nil {
		handlers := notificationhandlers.NewNotificationHandlers(service, logger)
		limiter := authhandlers.NewRateLimiter(rate.Every(6*time.Second), 10)
		httpRouter.Route("/api/notifications", func(r chi.Router) {
			r.Get("/vapid-public-key", handlers.HandleVAPIDPublicKey)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Use(authhandlers.RateLimitMiddleware(limiter))
				r.Post("/subscribe", handlers.HandleSubscribe)
				r.Post("/unsubscribe", handlers.HandleUnsubscribe)
			})
		})
	}

	return module, nil
}

// Run starts the job queue and the scheduler, then blocks until ctx is cancelled
// and stops both.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting notification module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if m.queue != nil {
		if err := m.queue.Start(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to start notification queue", attr.Error(err))
		}
	}
	m.Scheduler.Start(ctx)

	<-ctx.Done()

	stopCtx, stop := context.WithTimeout(context.Background(), m.stopTimeout)
	defer stop()
	if err := m.Scheduler.Stop(stopCtx); err != nil {
		logger.ErrorContext(stopCtx, "Notification scheduler did not stop in time", attr.Error(err))
	}
	if m.queue != nil {
		if err := m.queue.Stop(stopCtx); err != nil {
			logger.ErrorContext(stopCtx, "Failed to stop notification queue", attr.Error(err))
		}
	}
	logger.InfoContext(stopCtx, "Notification module goroutine stopped")
}

// HealthCheck reports whether the job queue can reach its tables.
func (m *Module) HealthCheck(ctx context.Context) error {
	if m.queue == nil {
		return nil
	}
	return m.queue.HealthCheck(ctx)
}

// Close stops the notification module.
func (m *Module) Close() error {
	m.observability.Logger.Info("Stopping notification module")
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	return nil
}
