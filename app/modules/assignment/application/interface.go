package assignmentservice

import (
	"context"

	assignmentdb "github.com/Black-And-White-Club/scout-bot/app/modules/assignment/infrastructure/repositories"
	authdomain "github.com/Black-And-White-Club/scout-bot/app/modules/auth/domain"
	"github.com/Black-And-White-Club/scout-bot/internal/results"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AssignmentResult is Ok(assignment) or Rejected(reason).
type AssignmentResult = results.OperationResult[*assignmentdb.Assignment, Rejection]

// CreateInput is what an admin submits to create an assignment. DueDate may be
// RFC3339 or a natural-language phrase read in Timezone.
type CreateInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	AssignedTo  []string `json:"assigned_to"`
	DueDate     string   `json:"due_date"`
	Timezone    string   `json:"timezone"`
}

// Service defines the assignment operations.
type Service interface {
	// Create stores an assignment for the admin's team and announces it on the event bus.
	Create(ctx context.Context, input CreateInput, admin authdomain.Scout) (AssignmentResult, error)

	// Complete marks an assignment done. Only assignees may complete it.
	Complete(ctx context.Context, id uuid.UUID, scout authdomain.Scout) (AssignmentResult, error)

	// Delete removes an assignment and its reminder subscriptions.
	Delete(ctx context.Context, id uuid.UUID, admin authdomain.Scout) (AssignmentResult, error)

	ListForTeam(ctx context.Context, teamNumber int) ([]assignmentdb.Assignment, error)
}

// SubscriptionCleaner removes the push subscriptions tied to an assignment.
type SubscriptionCleaner interface {
	DeleteForAssignment(ctx context.Context, db bun.IDB, assignmentID uuid.UUID) (int, error)
}

// Publisher is the event bus side the service writes to.
type Publisher interface {
	Publish(topic string, messages ...*message.Message) error
}
