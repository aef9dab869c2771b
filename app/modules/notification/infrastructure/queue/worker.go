package notificationqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/scout-bot/app/events"
	notificationservice "github.com/Black-And-White-Club/scout-bot/app/modules/notification/application"
	"github.com/Black-And-White-Club/scout-bot/internal/observability/attr"
	"github.com/riverqueue/river"
)

// Notifier is the part of the notification service the worker drives.
type Notifier interface {
	NotifyAssigned(ctx context.Context, created events.AssignmentCreatedPayloadV1) (notificationservice.DeliveryReport, error)
}

// NotifyAssignedWorker runs NotifyAssignedJob.
type NotifyAssignedWorker struct {
	river.WorkerDefaults[NotifyAssignedJob]
	notifier Notifier
	logger   *slog.Logger
}

// NewNotifyAssignedWorker creates the worker.
func NewNotifyAssignedWorker(logger *slog.Logger, notifier Notifier) *NotifyAssignedWorker {
	return &NotifyAssignedWorker{
		notifier: notifier,
		logger:   logger.With(attr.String("worker", notifyAssignedKind)),
	}
}

// Timeout bounds a single attempt.
func (w *NotifyAssignedWorker) Timeout(*river.Job[NotifyAssignedJob]) time.Duration {
	return time.Minute
}

func (w *NotifyAssignedWorker) Work(ctx context.Context, job *river.Job[NotifyAssignedJob]) error {
	if job.Args.CorrelationID != "" {
		ctx = attr.WithCorrelationID(ctx, job.Args.CorrelationID)
	}

	logger := w.logger.With(
		attr.ExtractCorrelationID(ctx),
		attr.UUID("assignment_id", job.Args.Assignment.AssignmentID),
		attr.Int("attempt", job.Attempt),
	)
	logger.InfoContext(ctx, "Processing notify assigned job")

	report, err := w.notifier.NotifyAssigned(ctx, job.Args.Assignment)
	if err != nil {
		logger.ErrorContext(ctx, "Notify assigned job failed", attr.Error(err))
		return fmt.Errorf("notify assigned: %w", err)
	}

	logger.InfoContext(ctx, "Notify assigned job completed",
		attr.Int("sent", report.Sent),
		attr.Int("failed", report.Failed),
		attr.Int("gone", report.Gone),
	)
	return nil
}
