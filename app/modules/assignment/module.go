package assignment

import (
	"context"
	"net/http"
	"sync"

	assignmentservice "github.com/Black-And-White-Club/scout-bot/app/modules/assignment/application"
	assignmenthandlers "github.com/Black-And-White-Club/scout-bot/app/modules/assignment/infrastructure/handlers"
	assignmentdb "github.com/Black-And-White-Club/scout-bot/app/modules/assignment/infrastructure/repositories"
	"github.com/Black-And-White-Club/scout-bot/internal/observability"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the assignment module.
type Module struct {
	AssignmentService assignmentservice.Service
	handlers          assignmenthandlers.Handlers
	observability     observability.Observability
	cancelFunc        context.CancelFunc
}

// NewAssignmentModule wires the assignment service and mounts /api/assignments.
// Created assignments are announced on publisher.
func NewAssignmentModule(
	ctx context.Context,
	obs observability.Observability,
	repo assignmentdb.Repository,
	subs assignmentservice.SubscriptionCleaner,
	publisher assignmentservice.Publisher,
	db *bun.DB,
	httpRouter chi.Router,
	requireAuth func(http.Handler) http.Handler,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "Initializing assignment module")

	service := assignmentservice.NewAssignmentService(repo, subs, publisher, logger, obs.ServiceMetrics(), obs.Tracer, db)
	handlers := assignmenthandlers.NewAssignmentHandlers(service, logger)

	if httpRouter != nil {
		httpRouter.Route("/api/assignments", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", handlers.HandleList)
			r.Post("/", handlers.HandleCreate)
			r.Post("/{id}/complete", handlers.HandleComplete)
			r.Delete("/{id}", handlers.HandleDelete)
		})
	}

	return &Module{
		AssignmentService: service,
		handlers:          handlers,
		observability:     obs,
	}, nil
}

// Run blocks until ctx is cancelled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting assignment module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Assignment module goroutine stopped")
}

// Close stops the assignment module.
func (m *Module) Close() error {
	m.observability.Logger.Info("Stopping assignment module")
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	return nil
}
