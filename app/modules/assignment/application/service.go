package assignmentservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Black-And-White-Club/scout-bot/app/events"
	assignmentdb "github.com/Black-And-White-Club/scout-bot/app/modules/assignment/infrastructure/repositories"
	authdomain "github.com/Black-And-White-Club/scout-bot/app/modules/auth/domain"
	"github.com/Black-And-White-Club/scout-bot/internal/observability/attr"
	"github.com/Black-And-White-Club/scout-bot/internal/observability/metrics"
	"github.com/Black-And-White-Club/scout-bot/internal/operation"
	"github.com/Black-And-White-Club/scout-bot/internal/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// AssignmentService implements the Service interface.
type AssignmentService struct {
	repo      assignmentdb.Repository
	subs      SubscriptionCleaner
	publisher Publisher
	dueDates  *DueDateParser
	runner    *operation.Runner
	logger    *slog.Logger
	now       func() time.Time
}

// NewAssignmentService creates a new AssignmentService. publisher may be nil, in
// which case no events are published.
func NewAssignmentService(
	repo assignmentdb.Repository,
	subs SubscriptionCleaner,
	publisher Publisher,
	logger *slog.Logger,
	m metrics.ServiceMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *AssignmentService {
	runner := operation.NewRunner("AssignmentService", logger, m, tracer, db)
	return &AssignmentService{
		repo:      repo,
		subs:      subs,
		publisher: publisher,
		dueDates:  NewDueDateParser(),
		runner:    runner,
		logger:    runner.Logger,
		now:       time.Now,
	}
}

var _ Service = (*AssignmentService)(nil)

// Create stores a pending assignment and publishes AssignmentCreatedV1 once the
// transaction has committed.
func (s *AssignmentService) Create(ctx context.Context, input CreateInput, admin authdomain.Scout) (AssignmentResult, error) {
	result, err := operation.Run(ctx, s.runner, "Create", strconv.Itoa(admin.TeamNumber), func(ctx context.Context, db bun.IDB) (AssignmentResult, error) {
		if !admin.IsAdmin() {
			return results.FailureResult[*assignmentdb.Assignment](reject(ReasonForbidden, "Only team admins can create assignments")), nil
		}

		assignment, rej := s.build(input, admin)
		if rej != nil {
			return results.FailureResult[*assignmentdb.Assignment](*rej), nil
		}

		if err := s.repo.Insert(ctx, db, assignment); err != nil {
			return AssignmentResult{}, fmt.Errorf("failed to create assignment: %w", err)
		}
		return results.SuccessResult[*assignmentdb.Assignment, Rejection](assignment), nil
	})
	if err != nil {
		return AssignmentResult{}, err
	}

	if result.IsSuccess() {
		s.publishCreated(ctx, *result.Success)
	}
	return result, nil
}

func (s *AssignmentService) build(input CreateInput, admin authdomain.Scout) (*assignmentdb.Assignment, *Rejection) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		rej := reject(ReasonInvalidTitle, "Title is required")
		return nil, &rej
	}

	now := s.now().UTC()
	assignment := &assignmentdb.Assignment{
		ID:          uuid.New(),
		TeamNumber:  admin.TeamNumber,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		CreatedBy:   admin.ID,
		AssignedTo:  normalizeAssignees(input.AssignedTo),
		Status:      assignmentdb.StatusPending,
		CreatedAt:   now,
	}

	if strings.TrimSpace(input.DueDate) != "" {
		due, err := s.dueDates.Parse(input.DueDate, input.Timezone, now)
		if err != nil {
			rej := reject(ReasonInvalidDueDate, "Invalid due date: %v", err)
			return nil, &rej
		}
		assignment.DueDate = &due
	}
	return assignment, nil
}

func normalizeAssignees(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// publishCreated announces a committed assignment. A failed publish is logged but
// does not undo the assignment; reminders are still derived by the scheduler.
func (s *AssignmentService) publishCreated(ctx context.Context, a *assignmentdb.Assignment) {
	if s.publisher == nil {
		return
	}

	msg, err := events.NewMessage(ctx, events.AssignmentCreatedPayloadV1{
		AssignmentID: a.ID,
		TeamNumber:   a.TeamNumber,
		Title:        a.Title,
		Description:  a.Description,
		AssignedTo:   a.AssignedTo,
		DueDate:      a.DueDate,
		CreatedBy:    a.CreatedBy,
	})
	if err == nil {
		err = s.publisher.Publish(events.AssignmentCreatedV1, msg)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to publish assignment created event",
			attr.ExtractCorrelationID(ctx),
			attr.UUID("assignment_id", a.ID),
			attr.Error(err),
		)
	}
}

// Complete marks an assignment completed for one of its assignees.
func (s *AssignmentService) Complete(ctx context.Context, id uuid.UUID, scout authdomain.Scout) (AssignmentResult, error) {
	return operation.Run(ctx, s.runner, "Complete", id.String(), func(ctx context.Context, db bun.IDB) (AssignmentResult, error) {
		assignment, rej, err := s.loadForTeam(ctx, db, id, scout)
		if err != nil || rej != nil {
			return rejectedOrFailed(rej, err)
		}
		if !assignment.IsAssigned(scout.ID) {
			return results.FailureResult[*assignmentdb.Assignment](reject(ReasonNotAssigned, "User is not assigned to this task")), nil
		}

		completedAt := s.now().UTC()
		if err := s.repo.MarkCompleted(ctx, db, id, completedAt); err != nil {
			if errors.Is(err, assignmentdb.ErrNotFound) {
				return results.FailureResult[*assignmentdb.Assignment](notFound), nil
			}
			return AssignmentResult{}, fmt.Errorf("failed to complete assignment: %w", err)
		}
		assignment.Status = assignmentdb.StatusCompleted
		assignment.CompletedAt = &completedAt
		return results.SuccessResult[*assignmentdb.Assignment, Rejection](assignment), nil
	})
}

// Delete removes an assignment and every subscription row scheduled for it.
func (s *AssignmentService) Delete(ctx context.Context, id uuid.UUID, admin authdomain.Scout) (AssignmentResult, error) {
	return operation.Run(ctx, s.runner, "Delete", id.String(), func(ctx context.Context, db bun.IDB) (AssignmentResult, error) {
		assignment, rej, err := s.loadForTeam(ctx, db, id, admin)
		if err != nil || rej != nil {
			return rejectedOrFailed(rej, err)
		}
		if !admin.IsAdmin() {
			return results.FailureResult[*assignmentdb.Assignment](reject(ReasonForbidden, "You don't have permission to delete assignments")), nil
		}

		if s.subs != nil {
			removed, err := s.subs.DeleteForAssignment(ctx, db, id)
			if err != nil {
				return AssignmentResult{}, fmt.Errorf("failed to delete assignment subscriptions: %w", err)
			}
			s.logger.InfoContext(ctx, "Removed assignment subscriptions",
				attr.ExtractCorrelationID(ctx),
				attr.UUID("assignment_id", id),
				attr.Int("count", removed),
			)
		}

		if err := s.repo.Delete(ctx, db, id); err != nil {
			if errors.Is(err, assignmentdb.ErrNotFound) {
				return results.FailureResult[*assignmentdb.Assignment](notFound), nil
			}
			return AssignmentResult{}, fmt.Errorf("failed to delete assignment: %w", err)
		}
		return results.SuccessResult[*assignmentdb.Assignment, Rejection](assignment), nil
	})
}

// loadForTeam hides assignments of other teams behind not_found.
func (s *AssignmentService) loadForTeam(ctx context.Context, db bun.IDB, id uuid.UUID, scout authdomain.Scout) (*assignmentdb.Assignment, *Rejection, error) {
	assignment, err := s.repo.GetByID(ctx, db, id)
	if err != nil {
		if errors.Is(err, assignmentdb.ErrNotFound) {
			return nil, &notFound, nil
		}
		return nil, nil, fmt.Errorf("failed to load assignment: %w", err)
	}
	if assignment.TeamNumber != scout.TeamNumber {
		return nil, &notFound, nil
	}
	return assignment, nil, nil
}

func rejectedOrFailed(rej *Rejection, err error) (AssignmentResult, error) {
	if err != nil {
		return AssignmentResult{}, err
	}
	return results.FailureResult[*assignmentdb.Assignment](*rej), nil
}

// ListForTeam returns a team's assignments.
func (s *AssignmentService) ListForTeam(ctx context.Context, teamNumber int) ([]assignmentdb.Assignment, error) {
	result, err := operation.Read(ctx, s.runner, "ListForTeam", strconv.Itoa(teamNumber), func(ctx context.Context, db bun.IDB) (results.OperationResult[[]assignmentdb.Assignment, Rejection], error) {
		assignments, err := s.repo.ListByTeam(ctx, db, teamNumber)
		if err != nil {
			return results.OperationResult[[]assignmentdb.Assignment, Rejection]{}, err
		}
		return results.SuccessResult[[]assignmentdb.Assignment, Rejection](assignments), nil
	})
	if err != nil {
		return nil, err
	}
	return *result.Success, nil
}
