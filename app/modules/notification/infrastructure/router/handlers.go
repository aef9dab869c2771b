package notificationrouter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/scout-bot/app/events"
	notificationservice "github.com/Black-And-White-Club/scout-bot/app/modules/notification/application"
	"github.com/Black-And-White-Club/scout-bot/internal/observability/attr"
)

// Handlers reacts to events the notification module subscribes to.
type Handlers interface {
	HandleAssignmentCreated(ctx context.Context, payload *events.AssignmentCreatedPayloadV1) error
}

// Enqueuer hands immediate delivery to the job queue.
type Enqueuer interface {
	EnqueueNotifyAssigned(ctx context.Context, created events.AssignmentCreatedPayloadV1) error
}

// Notifier delivers immediately, in the handler.
type Notifier interface {
	NotifyAssigned(ctx context.Context, created events.AssignmentCreatedPayloadV1) (notificationservice.DeliveryReport, error)
}

// EventHandlers routes assignment events to the job queue, or straight to the
// notifier when no queue is configured.
type EventHandlers struct {
	queue    Enqueuer
	notifier Notifier
	logger   *slog.Logger
}

// NewEventHandlers creates the handlers. queue may be nil.
func NewEventHandlers(queue Enqueuer, notifier Notifier, logger *slog.Logger) *EventHandlers {
	return &EventHandlers{queue: queue, notifier: notifier, logger: logger}
}

var _ Handlers = (*EventHandlers)(nil)

func (h *EventHandlers) HandleAssignmentCreated(ctx context.Context, payload *events.AssignmentCreatedPayloadV1) error {
	h.logger.InfoContext(ctx, "Received assignment created event",
		attr.ExtractCorrelationID(ctx),
		attr.UUID("assignment_id", payload.AssignmentID),
		attr.Int("assignees", len(payload.AssignedTo)),
	)
	if len(payload.AssignedTo) == 0 {
		return nil
	}

	if h.queue != nil {
		if err := h.queue.EnqueueNotifyAssigned(ctx, *payload); err != nil {
			return fmt.Errorf("enqueue notify assigned: %w", err)
		}
		return nil
	}

	if _, err := h.notifier.NotifyAssigned(ctx, *payload); err != nil {
		return fmt.Errorf("notify assigned: %w", err)
	}
	return nil
}
