package notificationqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/scout-bot/app/events"
	"github.com/Black-And-White-Club/scout-bot/internal/observability/attr"
	"github.com/Black-And-White-Club/scout-bot/internal/observability/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
)

const metricsService = "river"

// QueueService defines the contract for notification job operations.
type QueueService interface {
	// EnqueueNotifyAssigned schedules immediate delivery for a created assignment.
	// Enqueuing the same assignment twice yields one job.
	EnqueueNotifyAssigned(ctx context.Context, created events.AssignmentCreatedPayloadV1) error
	// HealthCheck verifies the queue service is healthy
	HealthCheck(ctx context.Context) error
	// Start starts the queue service
	Start(ctx context.Context) error
	// Stop stops the queue service
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Service runs notification jobs on River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics metrics.ServiceMetrics
}

// NewService connects a pgx pool for River and registers the notification workers.
func NewService(ctx context.Context, logger *slog.Logger, dsn string, m metrics.ServiceMetrics, notifier Notifier) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("operation", "new_notification_queue_service"),
		attr.String("component", "river_queue"),
	)

	start := time.Now()
	m.RecordOperationAttempt(ctx, "initialize_service", metricsService)

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		m.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		m.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		ctxLogger.ErrorContext(ctx, "Failed to ping database for River", attr.Error(err))
		m.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewNotifyAssignedWorker(ctxLogger, notifier))

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Logger: ctxLogger,
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
			QueueName:          {MaxWorkers: 25},
		},
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		ctxLogger.ErrorContext(ctx, "Failed to create River client", attr.Error(err))
		m.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	m.RecordOperationSuccess(ctx, "initialize_service", metricsService)
	m.RecordOperationDuration(ctx, "initialize_service", metricsService, time.Since(start))
	ctxLogger.InfoContext(ctx, "Notification queue service initialized")

	return &Service{
		client:  client,
		pool:    pool,
		logger:  ctxLogger,
		metrics: m,
	}, nil
}

// Start starts the River client.
func (s *Service) Start(ctx context.Context) error {
	return s.observe(ctx, "start_service", func() error {
		if err := s.client.Start(ctx); err != nil {
			return fmt.Errorf("failed to start River client: %w", err)
		}
		s.logger.InfoContext(ctx, "Notification queue service started")
		return nil
	})
}

// Stop waits for running jobs, then closes the pool.
func (s *Service) Stop(ctx context.Context) error {
	return s.observe(ctx, "stop_service", func() error {
		defer s.pool.Close()
		if err := s.client.Stop(ctx); err != nil {
			return fmt.Errorf("failed to stop River client: %w", err)
		}
		s.logger.InfoContext(ctx, "Notification queue service stopped")
		return nil
	})
}

func (s *Service) EnqueueNotifyAssigned(ctx context.Context, created events.AssignmentCreatedPayloadV1) error {
	return s.observe(ctx, "enqueue_notify_assigned", func() error {
		job := NotifyAssignedJob{
			Assignment:    created,
			CorrelationID: attr.CorrelationID(ctx),
		}
		opts := job.InsertOpts()
		opts.UniqueOpts = river.UniqueOpts{ByArgs: true}

		res, err := s.client.Insert(ctx, job, &opts)
		if err != nil {
			return fmt.Errorf("failed to enqueue notify assigned job: %w", err)
		}

		s.logger.InfoContext(ctx, "Notify assigned job enqueued",
			attr.ExtractCorrelationID(ctx),
			attr.UUID("assignment_id", created.AssignmentID),
			attr.Int64("job_id", res.Job.ID),
			attr.Bool("duplicate", res.UniqueSkippedAsDuplicate),
		)
		return nil
	})
}

// HealthCheck verifies the River tables are reachable.
func (s *Service) HealthCheck(ctx context.Context) error {
	return s.observe(ctx, "health_check", func() error {
		var jobs int64
		if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM river_job").Scan(&jobs); err != nil {
			return fmt.Errorf("river health check failed: %w", err)
		}
		return nil
	})
}

func (s *Service) observe(ctx context.Context, operation string, fn func() error) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, operation, metricsService)

	if err := fn(); err != nil {
		s.logger.ErrorContext(ctx, "Queue operation failed",
			attr.String("operation", operation),
			attr.Error(err),
		)
		s.metrics.RecordOperationFailure(ctx, operation, metricsService)
		return err
	}

	s.metrics.RecordOperationSuccess(ctx, operation, metricsService)
	s.metrics.RecordOperationDuration(ctx, operation, metricsService, time.Since(start))
	return nil
}
