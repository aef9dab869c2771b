package notificationservice

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	assignmentdb "github.com/Black-And-White-Club/scout-bot/app/modules/assignment/infrastructure/repositories"
	"github.com/Black-And-White-Club/scout-bot/app/modules/notification/infrastructure/push"
	notificationdb "github.com/Black-And-White-Club/scout-bot/app/modules/notification/infrastructure/repositories"
	"github.com/Black-And-White-Club/scout-bot/internal/observability/metrics"
	"github.com/Black-And-White-Club/scout-bot/internal/retry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.uber.org/goleak"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestScheduler(repo *FakeSubscriptionRepo, lookup *FakeAssignmentLookup, sender *FakeSender, cfg SchedulerConfig) *Scheduler {
	if lookup == nil {
		lookup = &FakeAssignmentLookup{}
	}
	if sender == nil {
		sender = &FakeSender{}
	}
	return NewScheduler(repo, lookup, sender, cfg, discardLogger, metrics.NewNoop())
}

func target(user string) notificationdb.PushTarget {
	return notificationdb.PushTarget{
		Endpoint: "https://push.example.com/" + user,
		Keys:     notificationdb.PushKeys{P256dh: "p256dh-" + user, Auth: "auth-" + user},
	}
}

func generalSub(user string, team, minutes int) notificationdb.Subscription {
	return notificationdb.Subscription{
		ID:              uuid.New(),
		UserID:          user,
		TeamNumber:      team,
		Target:          target(user),
		ReminderMinutes: minutes,
		Status:          notificationdb.StatusPending,
	}
}

func dueSub(user string, at time.Time) notificationdb.Subscription {
	assignmentID := uuid.New()
	s := generalSub(user, 334, 60)
	s.AssignmentID = &assignmentID
	s.ScheduledTime = &at
	s.Title = "Assignment Reminder: Pit map"
	return s
}

func datedAssignment(due time.Time, assignees ...string) assignmentdb.Assignment {
	return assignmentdb.Assignment{
		ID:         uuid.New(),
		TeamNumber: 334,
		Title:      "Pit map",
		AssignedTo: assignees,
		Status:     assignmentdb.StatusPending,
		DueDate:    &due,
	}
}

func pendingLookup(assignments ...assignmentdb.Assignment) *FakeAssignmentLookup {
	return &FakeAssignmentLookup{
		ListPendingWithDueDateFunc: func(context.Context, bun.IDB) ([]assignmentdb.Assignment, error) {
			return assignments, nil
		},
	}
}

func TestDispatchDue_NeverSendsTwice(t *testing.T) {
	row := dueSub("member-1", testNow.Add(-time.Minute))
	repo, mem := newMemRepo(row)
	sender := &FakeSender{}
	s := newTestScheduler(repo, nil, sender, SchedulerConfig{})

	first, err := s.DispatchDue(context.Background(), testNow)
	require.NoError(t, err)
	second, err := s.DispatchDue(context.Background(), testNow.Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, DeliveryReport{Sent: 1}, first)
	assert.Equal(t, DeliveryReport{}, second)
	require.Len(t, sender.Sent(), 1)
	assert.Equal(t, "Assignment Reminder: Pit map", sender.Sent()[0].Notification.Title)

	stored := mem.forAssignment(*row.AssignmentID)
	require.Len(t, stored, 1)
	assert.True(t, stored[0].Sent)
	assert.Equal(t, notificationdb.StatusSent, stored[0].Status)
}

func TestDispatchDue_Outcomes(t *testing.T) {
	ok := dueSub("a-ok", testNow.Add(-3*time.Minute))
	gone := dueSub("b-gone", testNow.Add(-2*time.Minute))
	broken := dueSub("c-broken", testNow.Add(-time.Minute))
	future := dueSub("d-future", testNow.Add(time.Hour))

	repo, mem := newMemRepo(ok, gone, broken, future)
	sender := &FakeSender{
		SendFunc: func(_ context.Context, tgt notificationdb.PushTarget, _ push.Notification) error {
			switch tgt.Endpoint {
			case target("b-gone").Endpoint:
				return fmt.Errorf("status 410: %w", push.ErrTargetGone)
			case target("c-broken").Endpoint:
				return errors.New("push service unavailable")
			}
			return nil
		},
	}
	s := newTestScheduler(repo, nil, sender, SchedulerConfig{})

	report, err := s.DispatchDue(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, DeliveryReport{Sent: 1, Failed: 1, Gone: 1}, report)
	assert.Len(t, sender.Sent(), 3)

	assert.Empty(t, mem.forAssignment(*gone.AssignmentID), "gone target should be deleted")

	failed := mem.forAssignment(*broken.AssignmentID)
	require.Len(t, failed, 1)
	assert.Equal(t, notificationdb.StatusError, failed[0].Status)
	assert.Equal(t, "push service unavailable", failed[0].ErrorMessage)
	assert.False(t, failed[0].Sent)

	pending := mem.forAssignment(*future.AssignmentID)
	require.Len(t, pending, 1)
	assert.Equal(t, notificationdb.StatusPending, pending[0].Status)

	deletes := 0
	for _, step := range repo.Trace() {
		if step == "DeleteByIDs" {
			deletes++
		}
	}
	assert.Equal(t, 1, deletes)
}

func TestDispatchDue_ConcurrentMarkIsNotCounted(t *testing.T) {
	repo := NewFakeSubscriptionRepo()
	repo.ListDueFunc = func(context.Context, bun.IDB, time.Time) ([]notificationdb.Subscription, error) {
		return []notificationdb.Subscription{dueSub("member-1", testNow)}, nil
	}
	repo.MarkSentFunc = func(context.Context, bun.IDB, uuid.UUID, time.Time) (bool, error) {
		return false, nil
	}
	s := newTestScheduler(repo, nil, nil, SchedulerConfig{})

	report, err := s.DispatchDue(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Sent)
}

func TestDispatchDue_RetriesTransientStoreErrors(t *testing.T) {
	row := dueSub("member-1", testNow.Add(-time.Minute))
	repo, mem := newMemRepo(row)
	markSent := repo.MarkSentFunc
	var markCalls atomic.Int32
	repo.MarkSentFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID, sentAt time.Time) (bool, error) {
		if markCalls.Add(1) == 1 {
			return false, driver.ErrBadConn
		}
		return markSent(ctx, db, id, sentAt)
	}
	sender := &FakeSender{}
	s := newTestScheduler(repo, nil, sender, SchedulerConfig{})
	s.retry = append(s.retry, retry.WithDelay(time.Millisecond))

	first, err := s.DispatchDue(context.Background(), testNow)
	require.NoError(t, err)
	second, err := s.DispatchDue(context.Background(), testNow.Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, DeliveryReport{Sent: 1}, first)
	assert.Equal(t, DeliveryReport{}, second)
	assert.Len(t, sender.Sent(), 1)
	assert.Equal(t, int32(2), markCalls.Load())
	assert.True(t, mem.forAssignment(*row.AssignmentID)[0].Sent)
}

func TestDispatchDue_ReportsExhaustedMarkSent(t *testing.T) {
	repo := NewFakeSubscriptionRepo()
	repo.ListDueFunc = func(context.Context, bun.IDB, time.Time) ([]notificationdb.Subscription, error) {
		return []notificationdb.Subscription{dueSub("member-1", testNow)}, nil
	}
	repo.MarkSentFunc = func(context.Context, bun.IDB, uuid.UUID, time.Time) (bool, error) {
		return false, driver.ErrBadConn
	}
	s := newTestScheduler(repo, nil, nil, SchedulerConfig{})
	s.retry = append(s.retry, retry.WithDelay(time.Millisecond))

	report, err := s.DispatchDue(context.Background(), testNow)
	require.Error(t, err)
	assert.ErrorIs(t, err, driver.ErrBadConn)
	assert.Zero(t, report.Sent)
}

func TestDispatchDue_ListError(t *testing.T) {
	repo := NewFakeSubscriptionRepo()
	repo.ListDueFunc = func(context.Context, bun.IDB, time.Time) ([]notificationdb.Subscription, error) {
		return nil, errors.New("boom")
	}
	s := newTestScheduler(repo, nil, nil, SchedulerConfig{})

	_, err := s.DispatchDue(context.Background(), testNow)
	require.Error(t, err)
	assert.Equal(t, []string{"ListDue"}, repo.Trace())
}

func TestDeriveReminders_Idempotent(t *testing.T) {
	a := datedAssignment(testNow.Add(48*time.Hour), "member-1", "member-2")
	repo, mem := newMemRepo(
		generalSub("member-1", 334, 60),
		generalSub("member-2", 334, 1440),
		generalSub("outsider", 334, 60),
	)
	s := newTestScheduler(repo, pendingLookup(a), nil, SchedulerConfig{})

	first, err := s.DeriveReminders(context.Background(), testNow)
	require.NoError(t, err)
	second, err := s.DeriveReminders(context.Background(), testNow)
	require.NoError(t, err)

	assert.Equal(t, 2, first)
	assert.Equal(t, 0, second)

	rows := mem.forAssignment(a.ID)
	require.Len(t, rows, 2)
	assert.Equal(t, "member-1", rows[0].UserID)
	assert.Equal(t, a.DueDate.Add(-60*time.Minute), *rows[0].ScheduledTime)
	assert.Equal(t, a.DueDate.Add(-1440*time.Minute), *rows[1].ScheduledTime)
	assert.Equal(t, "Assignment Reminder: Pit map", rows[0].Title)
	assert.Equal(t, "Your assignment 'Pit map' is due soon", rows[0].Body)
	assert.Equal(t, "/team/manage", rows[0].URL)
	assert.Equal(t, map[string]any{
		"type":          "assignment_reminder",
		"assignment_id": a.ID.String(),
		"title":         "Pit map",
		"due_date":      a.DueDate.Format(time.RFC3339),
	}, rows[0].Data)
	assert.Equal(t, target("member-1"), rows[0].Target)
}

func TestDeriveReminders_Skips(t *testing.T) {
	tests := []struct {
		name     string
		due      time.Time
		general  notificationdb.Subscription
		existing func(a assignmentdb.Assignment) []notificationdb.Subscription
	}{
		{
			name:    "reminder time already passed",
			due:     testNow.Add(30 * time.Minute),
			general: generalSub("member-1", 334, 60),
		},
		{
			name:    "reminder exactly now",
			due:     testNow.Add(60 * time.Minute),
			general: generalSub("member-1", 334, 60),
		},
		{
			name:    "general subscription of another team",
			due:     testNow.Add(48 * time.Hour),
			general: generalSub("member-1", 221, 60),
		},
		{
			name: "general subscription without a target",
			due:  testNow.Add(48 * time.Hour),
			general: func() notificationdb.Subscription {
				s := generalSub("member-1", 334, 60)
				s.Target = notificationdb.PushTarget{}
				return s
			}(),
		},
		{
			name:    "user already has a sent row",
			due:     testNow.Add(48 * time.Hour),
			general: generalSub("member-1", 334, 60),
			existing: func(a assignmentdb.Assignment) []notificationdb.Subscription {
				s := generalSub("member-1", 334, 60)
				s.AssignmentID = &a.ID
				s.Sent = true
				s.Status = notificationdb.StatusSent
				return []notificationdb.Subscription{s}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := datedAssignment(tt.due, "member-1")
			seed := []notificationdb.Subscription{tt.general}
			if tt.existing != nil {
				seed = append(seed, tt.existing(a)...)
			}
			repo, _ := newMemRepo(seed...)
			s := newTestScheduler(repo, pendingLookup(a), nil, SchedulerConfig{})

			n, err := s.DeriveReminders(context.Background(), testNow)
			require.NoError(t, err)
			assert.Zero(t, n)
			assert.NotContains(t, repo.Trace(), "InsertDerived")
		})
	}
}

func TestDeriveReminders_ContinuesPastFailingAssignment(t *testing.T) {
	bad := datedAssignment(testNow.Add(48*time.Hour), "member-1")
	good := datedAssignment(testNow.Add(48*time.Hour), "member-1")

	repo, mem := newMemRepo(generalSub("member-1", 334, 60))
	listUsers := repo.ListAssignmentUserIDsFunc
	repo.ListAssignmentUserIDsFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) ([]string, error) {
		if id == bad.ID {
			return nil, errors.New("boom")
		}
		return listUsers(ctx, db, id)
	}
	s := newTestScheduler(repo, pendingLookup(bad, good), nil, SchedulerConfig{})

	n, err := s.DeriveReminders(context.Background(), testNow)
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, mem.forAssignment(good.ID), 1)
}

// A reminder 60 minutes ahead of T, derived at T-90, fires between T-61 and T-59.
func TestReminderLifecycle(t *testing.T) {
	due := testNow.Add(90 * time.Minute)
	a := datedAssignment(due, "member-1")

	repo, mem := newMemRepo(generalSub("member-1", 334, 60))
	sender := &FakeSender{}
	s := newTestScheduler(repo, pendingLookup(a), sender, SchedulerConfig{})
	ctx := context.Background()

	n, err := s.DeriveReminders(ctx, due.Add(-90*time.Minute))
	require.NoError(t, err)
	require.Equal(t, 1, n)

	rows := mem.forAssignment(a.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, due.Add(-60*time.Minute), *rows[0].ScheduledTime)

	report, err := s.DispatchDue(ctx, due.Add(-61*time.Minute))
	require.NoError(t, err)
	assert.Zero(t, report.Sent)
	assert.Empty(t, sender.Sent())

	report, err = s.DispatchDue(ctx, due.Add(-59*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)
	require.Len(t, sender.Sent(), 1)

	rows = mem.forAssignment(a.ID)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Sent)
}

func TestScheduler_StartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	passes := make(chan struct{}, 16)
	repo := NewFakeSubscriptionRepo()
	repo.ListDueFunc = func(context.Context, bun.IDB, time.Time) ([]notificationdb.Subscription, error) {
		select {
		case passes <- struct{}{}:
		default:
		}
		return nil, nil
	}
	s := newTestScheduler(repo, nil, nil, SchedulerConfig{Interval: 5 * time.Millisecond})

	ctx := context.Background()
	s.Start(ctx)
	s.Start(ctx)

	for i := 0; i < 2; i++ {
		select {
		case <-passes:
		case <-time.After(2 * time.Second):
			t.Fatal("scheduler did not run a pass")
		}
	}

	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
}

func TestScheduler_SurvivesPanic(t *testing.T) {
	defer goleak.VerifyNone(t)

	var calls atomic.Int32
	recovered := make(chan struct{})
	repo := NewFakeSubscriptionRepo()
	repo.ListDueFunc = func(context.Context, bun.IDB, time.Time) ([]notificationdb.Subscription, error) {
		switch calls.Add(1) {
		case 1:
			panic("corrupt row")
		case 2:
			close(recovered)
		}
		return nil, nil
	}
	s := newTestScheduler(repo, nil, nil, SchedulerConfig{
		Interval:     time.Hour,
		ErrorBackoff: time.Millisecond,
	})

	s.Start(context.Background())
	select {
	case <-recovered:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not recover from panic")
	}
	require.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_StopIsBounded(t *testing.T) {
	defer goleak.VerifyNone(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	repo := NewFakeSubscriptionRepo()
	repo.ListDueFunc = func(context.Context, bun.IDB, time.Time) ([]notificationdb.Subscription, error) {
		select {
		case <-entered:
		default:
			close(entered)
		}
		<-release
		return nil, nil
	}
	s := newTestScheduler(repo, nil, nil, SchedulerConfig{StopTimeout: 20 * time.Millisecond})

	s.Start(context.Background())
	<-entered
	done := s.done

	err := s.Stop(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler goroutine did not exit")
	}
}
