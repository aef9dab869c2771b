package notificationservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/scout-bot/app/events"
	assignmentdb "github.com/Black-And-White-Club/scout-bot/app/modules/assignment/infrastructure/repositories"
	authdomain "github.com/Black-And-White-Club/scout-bot/app/modules/auth/domain"
	"github.com/Black-And-White-Club/scout-bot/app/modules/notification/infrastructure/push"
	notificationdb "github.com/Black-And-White-Club/scout-bot/app/modules/notification/infrastructure/repositories"
	"github.com/Black-And-White-Club/scout-bot/internal/observability/attr"
	"github.com/Black-And-White-Club/scout-bot/internal/observability/metrics"
	"github.com/Black-And-White-Club/scout-bot/internal/operation"
	"github.com/Black-And-White-Club/scout-bot/internal/results"
	"github.com/Black-And-White-Club/scout-bot/internal/retry"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// recentWindow bounds how old a push target may be for immediate notifications.
const recentWindow = 24 * time.Hour

// NotificationService implements the Service interface.
type NotificationService struct {
	repo        notificationdb.Repository
	assignments AssignmentLookup
	sender      push.Sender
	publicKey   string
	runner      *operation.Runner
	logger      *slog.Logger
	now         func() time.Time
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(
	repo notificationdb.Repository,
	assignments AssignmentLookup,
	sender push.Sender,
	vapidPublicKey string,
	logger *slog.Logger,
	m metrics.ServiceMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *NotificationService {
	runner := operation.NewRunner("NotificationService", logger, m, tracer, db)
	return &NotificationService{
		repo:        repo,
		assignments: assignments,
		sender:      sender,
		publicKey:   vapidPublicKey,
		runner:      runner,
		logger:      runner.Logger,
		now:         time.Now,
	}
}

var _ Service = (*NotificationService)(nil)

// Subscribe upserts the caller's row. Assignment rows get a reminder scheduled
// only when the reminder time is still ahead; otherwise the existing schedule is kept.
func (s *NotificationService) Subscribe(ctx context.Context, scout authdomain.Scout, req SubscribeRequest) (SubscribeResult, error) {
	return operation.Run(ctx, s.runner, "Subscribe", scout.ID, func(ctx context.Context, db bun.IDB) (SubscribeResult, error) {
		if scout.TeamNumber <= 0 {
			return results.FailureResult[Subscribed](reject(ReasonNotInTeam, "User is not in a team")), nil
		}
		if req.Subscription.IsEmpty() {
			return results.FailureResult[Subscribed](reject(ReasonInvalidSubscription, "Subscription data is required")), nil
		}

		minutes := notificationdb.DefaultReminderMinutes
		if req.ReminderMinutes != nil {
			if *req.ReminderMinutes < 0 {
				return results.FailureResult[Subscribed](reject(ReasonInvalidReminder, "Reminder time cannot be negative")), nil
			}
			minutes = *req.ReminderMinutes
		}

		now := s.now().UTC()
		sub := &notificationdb.Subscription{
			ID:              uuid.New(),
			UserID:          scout.ID,
			TeamNumber:      scout.TeamNumber,
			Target:          req.Subscription,
			AssignmentID:    req.AssignmentID,
			ReminderMinutes: minutes,
			Status:          notificationdb.StatusPending,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		reschedule := false
		if !sub.IsGeneral() {
			assignment, err := s.assignments.GetByID(ctx, db, *sub.AssignmentID)
			if errors.Is(err, assignmentdb.ErrNotFound) || (err == nil && assignment.TeamNumber != scout.TeamNumber) {
				return results.FailureResult[Subscribed](reject(ReasonNotFound, "Assignment not found")), nil
			}
			if err != nil {
				return SubscribeResult{}, fmt.Errorf("failed to load assignment: %w", err)
			}
			if !assignment.IsAssigned(scout.ID) {
				return results.FailureResult[Subscribed](reject(ReasonNotAssigned, "User is not assigned to this assignment")), nil
			}
			if assignment.DueDate != nil {
				if at := reminderAt(*assignment.DueDate, minutes); at.After(now) {
					scheduleReminder(sub, assignment, at)
					reschedule = true
				}
			}
		}

		created, err := s.repo.Upsert(ctx, db, sub, reschedule)
		if err != nil {
			return SubscribeResult{}, fmt.Errorf("failed to save subscription: %w", err)
		}

		out := Subscribed{Created: created}
		if reschedule {
			out.ScheduledTime = sub.ScheduledTime
		}
		return results.SuccessResult[Subscribed, Rejection](out), nil
	})
}

// Unsubscribe deletes the caller's rows in its team.
func (s *NotificationService) Unsubscribe(ctx context.Context, scout authdomain.Scout, req UnsubscribeRequest) (UnsubscribeResult, error) {
	return operation.Run(ctx, s.runner, "Unsubscribe", scout.ID, func(ctx context.Context, db bun.IDB) (UnsubscribeResult, error) {
		deleted, err := s.repo.DeleteMatching(ctx, db, scout.ID, scout.TeamNumber, req.AssignmentID)
		if err != nil {
			return UnsubscribeResult{}, fmt.Errorf("failed to delete subscriptions: %w", err)
		}
		if deleted == 0 {
			return results.FailureResult[int](reject(ReasonNotFound, "No subscriptions found")), nil
		}
		return results.SuccessResult[int, Rejection](deleted), nil
	})
}

// NotifyAssigned sends the new-assignment notification. Targets the push service
// reports as gone are deleted together once every assignee has been tried.
func (s *NotificationService) NotifyAssigned(ctx context.Context, created events.AssignmentCreatedPayloadV1) (DeliveryReport, error) {
	var report DeliveryReport
	if len(created.AssignedTo) == 0 {
		return report, nil
	}

	since := s.now().UTC().Add(-recentWindow)
	subs, err := retry.Value(ctx, func(ctx context.Context) ([]notificationdb.Subscription, error) {
		return s.repo.LatestForUsers(ctx, nil, created.TeamNumber, created.AssignedTo, since)
	}, retry.WithLogger(s.logger))
	if err != nil {
		return report, fmt.Errorf("notificationservice.NotifyAssigned: %w", err)
	}

	n := assignedNotification(created)
	var gone []uuid.UUID
	for _, sub := range subs {
		err := s.sender.Send(ctx, sub.Target, n)
		switch {
		case err == nil:
			report.Sent++
		case errors.Is(err, push.ErrTargetGone):
			report.Gone++
			gone = append(gone, sub.ID)
		default:
			report.Failed++
			s.logger.WarnContext(ctx, "Failed to send assignment notification",
				attr.ExtractCorrelationID(ctx),
				attr.UUID("assignment_id", created.AssignmentID),
				attr.String("user_id", sub.UserID),
				attr.Error(err),
			)
		}
	}

	if len(gone) > 0 {
		removed, err := s.repo.DeleteByIDs(ctx, nil, gone)
		if err != nil {
			return report, fmt.Errorf("notificationservice.NotifyAssigned: delete gone targets: %w", err)
		}
		s.logger.InfoContext(ctx, "Removed expired push subscriptions",
			attr.ExtractCorrelationID(ctx),
			attr.Int("count", removed),
		)
	}

	s.logger.InfoContext(ctx, "Assignment notification delivered",
		attr.ExtractCorrelationID(ctx),
		attr.UUID("assignment_id", created.AssignmentID),
		attr.Int("sent", report.Sent),
		attr.Int("failed", report.Failed),
		attr.Int("gone", report.Gone),
	)
	return report, nil
}

// VAPIDPublicKey returns the key browsers subscribe with.
func (s *NotificationService) VAPIDPublicKey() string {
	return s.publicKey
}
