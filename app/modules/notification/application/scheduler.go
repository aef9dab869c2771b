package notificationservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	assignmentdb "github.com/Black-And-White-Club/scout-bot/app/modules/assignment/infrastructure/repositories"
	"github.com/Black-And-White-Club/scout-bot/app/modules/notification/infrastructure/push"
	notificationdb "github.com/Black-And-White-Club/scout-bot/app/modules/notification/infrastructure/repositories"
	"github.com/Black-And-White-Club/scout-bot/internal/observability/attr"
	"github.com/Black-And-White-Club/scout-bot/internal/observability/metrics"
	"github.com/Black-And-White-Club/scout-bot/internal/retry"
	"github.com/google/uuid"
)

// SchedulerConfig holds the loop timings.
type SchedulerConfig struct {
	Interval     time.Duration
	ErrorBackoff time.Duration
	StopTimeout  time.Duration
}

func (c SchedulerConfig) withDefaults() SchedulerConfig {
	if c.Interval <= 0 {
		c.Interval = 15 * time.Second
	}
	if c.ErrorBackoff <= 0 {
		c.ErrorBackoff = 5 * time.Second
	}
	if c.StopTimeout <= 0 {
		c.StopTimeout = 5 * time.Second
	}
	return c
}

// Scheduler delivers due reminder rows and derives new ones from assignments. A
// single goroutine runs both passes on every tick.
type Scheduler struct {
	repo        notificationdb.Repository
	assignments AssignmentLookup
	sender      push.Sender
	cfg         SchedulerConfig
	logger      *slog.Logger
	metrics     metrics.SchedulerMetrics
	retry       []retry.Option
	now         func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a stopped scheduler.
func NewScheduler(
	repo notificationdb.Repository,
	assignments AssignmentLookup,
	sender push.Sender,
	cfg SchedulerConfig,
	logger *slog.Logger,
	m metrics.SchedulerMetrics,
) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.NewNoop()
	}
	return &Scheduler{
		repo:        repo,
		assignments: assignments,
		sender:      sender,
		cfg:         cfg.withDefaults(),
		logger:      logger.With(attr.String("component", "notification_scheduler")),
		metrics:     m,
		retry:       []retry.Option{retry.WithLogger(logger)},
		now:         time.Now,
	}
}

// Start launches the loop. Calling Start on a running scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	s.logger.InfoContext(ctx, "Notification scheduler started",
		attr.Duration("interval", s.cfg.Interval),
	)
	go s.loop(ctx, done)
}

// Stop cancels the loop and waits for it to exit, bounded by ctx or StopTimeout
// when ctx has no deadline. Calling Stop on a stopped scheduler does nothing.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	if _, ok := ctx.Deadline(); !ok {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, s.cfg.StopTimeout)
		defer stop()
	}

	select {
	case <-done:
		s.logger.InfoContext(ctx, "Notification scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notificationservice.Scheduler.Stop: %w", ctx.Err())
	}
}

func (s *Scheduler) loop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	for {
		wait := s.cfg.Interval
		if err := s.runPass(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.ErrorContext(ctx, "Notification scheduler pass failed", attr.Error(err))
			wait = s.cfg.ErrorBackoff
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// runPass runs one dispatch pass and one derivation pass. A panic in either is
// turned into an error so the loop survives it.
func (s *Scheduler) runPass(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "Notification scheduler pass panicked",
				attr.Any("panic", r),
				attr.String("stack", string(debug.Stack())),
			)
			err = fmt.Errorf("scheduler pass panicked: %v", r)
		}
	}()

	now := s.now().UTC()

	start := time.Now()
	_, dispatchErr := s.DispatchDue(ctx, now)
	s.metrics.RecordPass(ctx, "dispatch", time.Since(start), dispatchErr)

	start = time.Now()
	derived, deriveErr := s.DeriveReminders(ctx, now)
	s.metrics.RecordPass(ctx, "derive", time.Since(start), deriveErr)
	s.metrics.RecordDerived(ctx, derived)

	return errors.Join(dispatchErr, deriveErr)
}

// DispatchDue sends every due row. Delivered rows are marked sent, rows whose
// target is gone are deleted, and other failures move the row to the error state.
func (s *Scheduler) DispatchDue(ctx context.Context, now time.Time) (DeliveryReport, error) {
	var report DeliveryReport

	due, err := retry.Value(ctx, func(ctx context.Context) ([]notificationdb.Subscription, error) {
		return s.repo.ListDue(ctx, nil, now)
	}, s.retry...)
	if err != nil {
		return report, fmt.Errorf("notificationservice.DispatchDue: %w", err)
	}

	var (
		gone []uuid.UUID
		errs []error
	)
	for _, sub := range due {
		if ctx.Err() != nil {
			break
		}

		logger := s.logger.With(
			attr.UUID("subscription_id", sub.ID),
			attr.String("user_id", sub.UserID),
		)

		sendErr := s.sender.Send(ctx, sub.Target, storedNotification(sub))
		switch {
		case sendErr == nil:
			sentAt := s.now().UTC()
			marked, err := retry.Value(ctx, func(ctx context.Context) (bool, error) {
				return s.repo.MarkSent(ctx, nil, sub.ID, sentAt)
			}, s.retry...)
			if err != nil {
				logger.ErrorContext(ctx, "Failed to mark notification sent", attr.Error(err))
				errs = append(errs, fmt.Errorf("mark %s sent: %w", sub.ID, err))
				continue
			}
			if !marked {
				logger.WarnContext(ctx, "Notification was already marked sent")
				continue
			}
			report.Sent++
			s.metrics.RecordDelivery(ctx, "sent")

		case errors.Is(sendErr, push.ErrTargetGone):
			report.Gone++
			gone = append(gone, sub.ID)
			s.metrics.RecordDelivery(ctx, "gone")

		default:
			report.Failed++
			s.metrics.RecordDelivery(ctx, "failed")
			logger.WarnContext(ctx, "Failed to send notification", attr.Error(sendErr))
			err := retry.Do(ctx, func(ctx context.Context) error {
				return s.repo.MarkFailed(ctx, nil, sub.ID, sendErr.Error())
			}, s.retry...)
			if err != nil {
				logger.ErrorContext(ctx, "Failed to mark notification failed", attr.Error(err))
				errs = append(errs, fmt.Errorf("mark %s failed: %w", sub.ID, err))
			}
		}
	}

	if len(gone) > 0 {
		removed, err := retry.Value(ctx, func(ctx context.Context) (int, error) {
			return s.repo.DeleteByIDs(ctx, nil, gone)
		}, s.retry...)
		if err != nil {
			errs = append(errs, fmt.Errorf("delete gone targets: %w", err))
		} else {
			s.logger.InfoContext(ctx, "Removed expired push subscriptions", attr.Int("count", removed))
		}
	}

	if len(due) > 0 {
		s.logger.InfoContext(ctx, "Dispatched due notifications",
			attr.Int("due", len(due)),
			attr.Int("sent", report.Sent),
			attr.Int("failed", report.Failed),
			attr.Int("gone", report.Gone),
		)
	}
	if err := errors.Join(errs...); err != nil {
		return report, fmt.Errorf("notificationservice.DispatchDue: %w", err)
	}
	return report, nil
}

// DeriveReminders materializes a reminder row for every assignee of a pending,
// dated assignment that holds a general subscription in the assignment's team and
// has no row for that assignment yet. Reminders whose time has already passed are
// not created. It returns the number of rows inserted.
func (s *Scheduler) DeriveReminders(ctx context.Context, now time.Time) (int, error) {
	assignments, err := retry.Value(ctx, func(ctx context.Context) ([]assignmentdb.Assignment, error) {
		return s.assignments.ListPendingWithDueDate(ctx, nil)
	}, s.retry...)
	if err != nil {
		return 0, fmt.Errorf("notificationservice.DeriveReminders: %w", err)
	}

	generals := make(map[int][]notificationdb.Subscription)
	inserted := 0
	var errs []error

	for i := range assignments {
		if ctx.Err() != nil {
			break
		}
		a := &assignments[i]
		if a.DueDate == nil || len(a.AssignedTo) == 0 {
			continue
		}

		teamSubs, ok := generals[a.TeamNumber]
		if !ok {
			teamSubs, err = retry.Value(ctx, func(ctx context.Context) ([]notificationdb.Subscription, error) {
				return s.repo.ListGeneralForTeam(ctx, nil, a.TeamNumber)
			}, s.retry...)
			if err != nil {
				errs = append(errs, fmt.Errorf("list general subscriptions for team %d: %w", a.TeamNumber, err))
				continue
			}
			generals[a.TeamNumber] = teamSubs
		}

		n, err := s.deriveForAssignment(ctx, a, teamSubs, now)
		inserted += n
		if err != nil {
			errs = append(errs, err)
		}
	}

	if inserted > 0 {
		s.logger.InfoContext(ctx, "Derived assignment reminders", attr.Int("count", inserted))
	}
	if err := errors.Join(errs...); err != nil {
		return inserted, fmt.Errorf("notificationservice.DeriveReminders: %w", err)
	}
	return inserted, nil
}

func (s *Scheduler) deriveForAssignment(ctx context.Context, a *assignmentdb.Assignment, teamSubs []notificationdb.Subscription, now time.Time) (int, error) {
	existing, err := retry.Value(ctx, func(ctx context.Context) ([]string, error) {
		return s.repo.ListAssignmentUserIDs(ctx, nil, a.ID)
	}, s.retry...)
	if err != nil {
		return 0, fmt.Errorf("list subscribers of assignment %s: %w", a.ID, err)
	}
	covered := make(map[string]struct{}, len(existing))
	for _, userID := range existing {
		covered[userID] = struct{}{}
	}

	inserted := 0
	for _, general := range teamSubs {
		if !a.IsAssigned(general.UserID) || general.Target.IsEmpty() {
			continue
		}
		if _, ok := covered[general.UserID]; ok {
			continue
		}

		at := reminderAt(*a.DueDate, general.ReminderMinutes)
		if !at.After(now) {
			continue
		}

		assignmentID := a.ID
		sub := &notificationdb.Subscription{
			ID:              uuid.New(),
			UserID:          general.UserID,
			TeamNumber:      a.TeamNumber,
			Target:          general.Target,
			AssignmentID:    &assignmentID,
			ReminderMinutes: general.ReminderMinutes,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		scheduleReminder(sub, a, at)

		ok, err := retry.Value(ctx, func(ctx context.Context) (bool, error) {
			return s.repo.InsertDerived(ctx, nil, sub)
		}, s.retry...)
		if err != nil {
			return inserted, fmt.Errorf("insert reminder for assignment %s: %w", a.ID, err)
		}
		covered[general.UserID] = struct{}{}
		if ok {
			inserted++
		}
	}
	return inserted, nil
}
