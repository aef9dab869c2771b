package notificationservice

import (
	"context"
	"time"

	"github.com/Black-And-White-Club/scout-bot/app/events"
	assignmentdb "github.com/Black-And-White-Club/scout-bot/app/modules/assignment/infrastructure/repositories"
	authdomain "github.com/Black-And-White-Club/scout-bot/app/modules/auth/domain"
	notificationdb "github.com/Black-And-White-Club/scout-bot/app/modules/notification/infrastructure/repositories"
	"github.com/Black-And-White-Club/scout-bot/internal/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SubscribeRequest registers a browser push target for the caller's team, or for
// one assignment when AssignmentID is set. ReminderMinutes defaults to one day.
type SubscribeRequest struct {
	Subscription    notificationdb.PushTarget `json:"subscription"`
	AssignmentID    *uuid.UUID                `json:"assignment_id,omitempty"`
	ReminderMinutes *int                      `json:"reminder_time,omitempty"`
}

// UnsubscribeRequest narrows which of the caller's rows are removed.
type UnsubscribeRequest struct {
	AssignmentID *uuid.UUID `json:"assignment_id,omitempty"`
}

// Subscribed describes the row written by Subscribe.
type Subscribed struct {
	Created       bool
	ScheduledTime *time.Time
}

// SubscribeResult is Ok(Subscribed) or Rejected(reason).
type SubscribeResult = results.OperationResult[Subscribed, Rejection]

// UnsubscribeResult is Ok(deleted count) or Rejected(reason).
type UnsubscribeResult = results.OperationResult[int, Rejection]

// DeliveryReport counts the outcomes of one batch of sends.
type DeliveryReport struct {
	Sent   int
	Failed int
	Gone   int
}

// Service defines the subscription operations and immediate delivery.
type Service interface {
	// Subscribe creates or refreshes the caller's row for its tuple.
	Subscribe(ctx context.Context, scout authdomain.Scout, req SubscribeRequest) (SubscribeResult, error)

	// Unsubscribe deletes the caller's rows in its team, optionally only those of one assignment.
	Unsubscribe(ctx context.Context, scout authdomain.Scout, req UnsubscribeRequest) (UnsubscribeResult, error)

	// NotifyAssigned pushes a "New Assignment" notification to each assignee that
	// registered a push target in the last day.
	NotifyAssigned(ctx context.Context, created events.AssignmentCreatedPayloadV1) (DeliveryReport, error)

	VAPIDPublicKey() string
}

// AssignmentLookup is the read side of the assignment store the notification
// module depends on.
type AssignmentLookup interface {
	GetByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*assignmentdb.Assignment, error)
	ListPendingWithDueDate(ctx context.Context, db bun.IDB) ([]assignmentdb.Assignment, error)
}
