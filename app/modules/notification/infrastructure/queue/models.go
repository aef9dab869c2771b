package notificationqueue

import (
	"github.com/Black-And-White-Club/scout-bot/app/events"
	"github.com/riverqueue/river"
)

const (
	// QueueName is the River queue notification jobs run on.
	QueueName = "notification"

	notifyAssignedKind        = "notify_assigned"
	notifyAssignedMaxAttempts = 5
)

// NotifyAssignedJob delivers the new-assignment notification for one assignment.
// Uniqueness is keyed on the assignment only.
type NotifyAssignedJob struct {
	Assignment    events.AssignmentCreatedPayloadV1 `json:"assignment" river:"unique"`
	CorrelationID string                            `json:"correlation_id,omitempty"`
}

// Kind returns the job type identifier for River
func (NotifyAssignedJob) Kind() string { return notifyAssignedKind }

// InsertOpts routes the job to the notification queue.
func (NotifyAssignedJob) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       QueueName,
		MaxAttempts: notifyAssignedMaxAttempts,
	}
}
