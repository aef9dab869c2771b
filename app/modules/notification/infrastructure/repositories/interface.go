package notificationdb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for push subscription persistence.
type Repository interface {
	// ListDue returns rows whose scheduled time has passed and that are still pending and unsent.
	ListDue(ctx context.Context, db bun.IDB, now time.Time) ([]Subscription, error)

	// MarkSent flags a row as delivered. It only applies to rows that are still unsent
	// and reports whether this call made the transition.
	MarkSent(ctx context.Context, db bun.IDB, id uuid.UUID, sentAt time.Time) (bool, error)

	// MarkFailed moves a row to the error status. Errored rows are not retried.
	MarkFailed(ctx context.Context, db bun.IDB, id uuid.UUID, message string) error

	DeleteByIDs(ctx context.Context, db bun.IDB, ids []uuid.UUID) (int, error)

	// InsertDerived stores a reminder row unless one already exists for its
	// (user, team, assignment) tuple. It reports whether a row was inserted.
	InsertDerived(ctx context.Context, db bun.IDB, sub *Subscription) (bool, error)

	// Upsert creates or refreshes the row for sub's tuple. The push target and lead
	// time are always refreshed; the schedule and content only when reschedule is set.
	// It reports whether a new row was created.
	Upsert(ctx context.Context, db bun.IDB, sub *Subscription, reschedule bool) (bool, error)

	// DeleteMatching deletes a user's rows, narrowed by team (when > 0) and assignment (when set).
	DeleteMatching(ctx context.Context, db bun.IDB, userID string, teamNumber int, assignmentID *uuid.UUID) (int, error)

	DeleteForAssignment(ctx context.Context, db bun.IDB, assignmentID uuid.UUID) (int, error)

	// ListGeneralForTeam returns the team-wide rows with a deliverable push target.
	ListGeneralForTeam(ctx context.Context, db bun.IDB, teamNumber int) ([]Subscription, error)

	// ListAssignmentUserIDs returns the users that already have a row for the assignment.
	ListAssignmentUserIDs(ctx context.Context, db bun.IDB, assignmentID uuid.UUID) ([]string, error)

	// LatestForUsers returns, per user, the most recently updated deliverable row in
	// the team that was updated at or after since.
	LatestForUsers(ctx context.Context, db bun.IDB, teamNumber int, userIDs []string, since time.Time) ([]Subscription, error)
}
