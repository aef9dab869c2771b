package assignmentdb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for assignment persistence.
type Repository interface {
	Insert(ctx context.Context, db bun.IDB, assignment *Assignment) error
	GetByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*Assignment, error)

	// MarkCompleted sets the status to completed and stamps completedAt.
	MarkCompleted(ctx context.Context, db bun.IDB, id uuid.UUID, completedAt time.Time) error

	Delete(ctx context.Context, db bun.IDB, id uuid.UUID) error

	// ListByTeam returns a team's assignments, soonest due first.
	ListByTeam(ctx context.Context, db bun.IDB, teamNumber int) ([]Assignment, error)

	// ListPendingWithDueDate returns every pending assignment that has a due date.
	ListPendingWithDueDate(ctx context.Context, db bun.IDB) ([]Assignment, error)
}
