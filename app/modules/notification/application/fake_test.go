package notificationservice

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	assignmentdb "github.com/Black-And-White-Club/scout-bot/app/modules/assignment/infrastructure/repositories"
	"github.com/Black-And-White-Club/scout-bot/app/modules/notification/infrastructure/push"
	notificationdb "github.com/Black-And-White-Club/scout-bot/app/modules/notification/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Subscription Repo
// ------------------------

type FakeSubscriptionRepo struct {
	mu    sync.Mutex
	trace []string

	ListDueFunc               func(ctx context.Context, db bun.IDB, now time.Time) ([]notificationdb.Subscription, error)
	MarkSentFunc              func(ctx context.Context, db bun.IDB, id uuid.UUID, sentAt time.Time) (bool, error)
	MarkFailedFunc            func(ctx context.Context, db bun.IDB, id uuid.UUID, message string) error
	DeleteByIDsFunc           func(ctx context.Context, db bun.IDB, ids []uuid.UUID) (int, error)
	InsertDerivedFunc         func(ctx context.Context, db bun.IDB, sub *notificationdb.Subscription) (bool, error)
	UpsertFunc                func(ctx context.Context, db bun.IDB, sub *notificationdb.Subscription, reschedule bool) (bool, error)
	DeleteMatchingFunc        func(ctx context.Context, db bun.IDB, userID string, teamNumber int, assignmentID *uuid.UUID) (int, error)
	DeleteForAssignmentFunc   func(ctx context.Context, db bun.IDB, assignmentID uuid.UUID) (int, error)
	ListGeneralForTeamFunc    func(ctx context.Context, db bun.IDB, teamNumber int) ([]notificationdb.Subscription, error)
	ListAssignmentUserIDsFunc func(ctx context.Context, db bun.IDB, assignmentID uuid.UUID) ([]string, error)
	LatestForUsersFunc        func(ctx context.Context, db bun.IDB, teamNumber int, userIDs []string, since time.Time) ([]notificationdb.Subscription, error)
}

func NewFakeSubscriptionRepo() *FakeSubscriptionRepo {
	return &FakeSubscriptionRepo{trace: []string{}}
}

func (f *FakeSubscriptionRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeSubscriptionRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeSubscriptionRepo) ListDue(ctx context.Context, db bun.IDB, now time.Time) ([]notificationdb.Subscription, error) {
	f.record("ListDue")
	if f.ListDueFunc != nil {
		return f.ListDueFunc(ctx, db, now)
	}
	return nil, nil
}

func (f *FakeSubscriptionRepo) MarkSent(ctx context.Context, db bun.IDB, id uuid.UUID, sentAt time.Time) (bool, error) {
	f.record("MarkSent")
	if f.MarkSentFunc != nil {
		return f.MarkSentFunc(ctx, db, id, sentAt)
	}
	return true, nil
}

func (f *FakeSubscriptionRepo) MarkFailed(ctx context.Context, db bun.IDB, id uuid.UUID, message string) error {
	f.record("MarkFailed")
	if f.MarkFailedFunc != nil {
		return f.MarkFailedFunc(ctx, db, id, message)
	}
	return nil
}

func (f *FakeSubscriptionRepo) DeleteByIDs(ctx context.Context, db bun.IDB, ids []uuid.UUID) (int, error) {
	f.record("DeleteByIDs")
	if f.DeleteByIDsFunc != nil {
		return f.DeleteByIDsFunc(ctx, db, ids)
	}
	return len(ids), nil
}

func (f *FakeSubscriptionRepo) InsertDerived(ctx context.Context, db bun.IDB, sub *notificationdb.Subscription) (bool, error) {
	f.record("InsertDerived")
	if f.InsertDerivedFunc != nil {
		return f.InsertDerivedFunc(ctx, db, sub)
	}
	return true, nil
}

func (f *FakeSubscriptionRepo) Upsert(ctx context.Context, db bun.IDB, sub *notificationdb.Subscription, reschedule bool) (bool, error) {
	f.record("Upsert")
	if f.UpsertFunc != nil {
		return f.UpsertFunc(ctx, db, sub, reschedule)
	}
	return true, nil
}

func (f *FakeSubscriptionRepo) DeleteMatching(ctx context.Context, db bun.IDB, userID string, teamNumber int, assignmentID *uuid.UUID) (int, error) {
	f.record("DeleteMatching")
	if f.DeleteMatchingFunc != nil {
		return f.DeleteMatchingFunc(ctx, db, userID, teamNumber, assignmentID)
	}
	return 0, nil
}

func (f *FakeSubscriptionRepo) DeleteForAssignment(ctx context.Context, db bun.IDB, assignmentID uuid.UUID) (int, error) {
	f.record("DeleteForAssignment")
	if f.DeleteForAssignmentFunc != nil {
		return f.DeleteForAssignmentFunc(ctx, db, assignmentID)
	}
	return 0, nil
}

func (f *FakeSubscriptionRepo) ListGeneralForTeam(ctx context.Context, db bun.IDB, teamNumber int) ([]notificationdb.Subscription, error) {
	f.record("ListGeneralForTeam")
	if f.ListGeneralForTeamFunc != nil {
		return f.ListGeneralForTeamFunc(ctx, db, teamNumber)
	}
	return nil, nil
}

func (f *FakeSubscriptionRepo) ListAssignmentUserIDs(ctx context.Context, db bun.IDB, assignmentID uuid.UUID) ([]string, error) {
	f.record("ListAssignmentUserIDs")
	if f.ListAssignmentUserIDsFunc != nil {
		return f.ListAssignmentUserIDsFunc(ctx, db, assignmentID)
	}
	return nil, nil
}

func (f *FakeSubscriptionRepo) LatestForUsers(ctx context.Context, db bun.IDB, teamNumber int, userIDs []string, since time.Time) ([]notificationdb.Subscription, error) {
	f.record("LatestForUsers")
	if f.LatestForUsersFunc != nil {
		return f.LatestForUsersFunc(ctx, db, teamNumber, userIDs, since)
	}
	return nil, nil
}

var _ notificationdb.Repository = (*FakeSubscriptionRepo)(nil)

// memSubscriptions backs a FakeSubscriptionRepo with a map so scheduler passes can
// be run against shared state. It enforces the (user, team, assignment) tuple.
type memSubscriptions struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*notificationdb.Subscription
}

func tupleKey(s *notificationdb.Subscription) string {
	key := s.UserID + "|" + strconv.Itoa(s.TeamNumber)
	if s.AssignmentID != nil {
		key += "|" + s.AssignmentID.String()
	}
	return key
}

func newMemRepo(seed ...notificationdb.Subscription) (*FakeSubscriptionRepo, *memSubscriptions) {
	mem := &memSubscriptions{rows: map[uuid.UUID]*notificationdb.Subscription{}}
	for i := range seed {
		row := seed[i]
		mem.rows[row.ID] = &row
	}

	repo := NewFakeSubscriptionRepo()
	repo.ListDueFunc = func(_ context.Context, _ bun.IDB, now time.Time) ([]notificationdb.Subscription, error) {
		return mem.filter(func(s *notificationdb.Subscription) bool {
			return s.ScheduledTime != nil && !s.ScheduledTime.After(now) && !s.Sent && s.Status == notificationdb.StatusPending
		}), nil
	}
	repo.MarkSentFunc = func(_ context.Context, _ bun.IDB, id uuid.UUID, sentAt time.Time) (bool, error) {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		row, ok := mem.rows[id]
		if !ok || row.Sent {
			return false, nil
		}
		row.Sent = true
		row.SentAt = &sentAt
		row.Status = notificationdb.StatusSent
		return true, nil
	}
	repo.MarkFailedFunc = func(_ context.Context, _ bun.IDB, id uuid.UUID, message string) error {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		if row, ok := mem.rows[id]; ok && !row.Sent {
			row.Status = notificationdb.StatusError
			row.ErrorMessage = message
		}
		return nil
	}
	repo.DeleteByIDsFunc = func(_ context.Context, _ bun.IDB, ids []uuid.UUID) (int, error) {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		n := 0
		for _, id := range ids {
			if _, ok := mem.rows[id]; ok {
				delete(mem.rows, id)
				n++
			}
		}
		return n, nil
	}
	repo.InsertDerivedFunc = func(_ context.Context, _ bun.IDB, sub *notificationdb.Subscription) (bool, error) {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		key := tupleKey(sub)
		for _, row := range mem.rows {
			if tupleKey(row) == key {
				return false, nil
			}
		}
		row := *sub
		mem.rows[row.ID] = &row
		return true, nil
	}
	repo.ListGeneralForTeamFunc = func(_ context.Context, _ bun.IDB, teamNumber int) ([]notificationdb.Subscription, error) {
		return mem.filter(func(s *notificationdb.Subscription) bool {
			return s.TeamNumber == teamNumber && s.AssignmentID == nil && !s.Target.IsEmpty()
		}), nil
	}
	repo.ListAssignmentUserIDsFunc = func(_ context.Context, _ bun.IDB, assignmentID uuid.UUID) ([]string, error) {
		var out []string
		for _, s := range mem.filter(func(s *notificationdb.Subscription) bool {
			return s.AssignmentID != nil && *s.AssignmentID == assignmentID
		}) {
			out = append(out, s.UserID)
		}
		return out, nil
	}
	return repo, mem
}

func (m *memSubscriptions) filter(keep func(*notificationdb.Subscription) bool) []notificationdb.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []notificationdb.Subscription
	for _, row := range m.rows {
		if keep(row) {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

func (m *memSubscriptions) forAssignment(id uuid.UUID) []notificationdb.Subscription {
	return m.filter(func(s *notificationdb.Subscription) bool {
		return s.AssignmentID != nil && *s.AssignmentID == id
	})
}

// ------------------------
// Fake Assignment Lookup
// ------------------------

type FakeAssignmentLookup struct {
	GetByIDFunc                func(ctx context.Context, db bun.IDB, id uuid.UUID) (*assignmentdb.Assignment, error)
	ListPendingWithDueDateFunc func(ctx context.Context, db bun.IDB) ([]assignmentdb.Assignment, error)
}

func (f *FakeAssignmentLookup) GetByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*assignmentdb.Assignment, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, db, id)
	}
	return nil, assignmentdb.ErrNotFound
}

func (f *FakeAssignmentLookup) ListPendingWithDueDate(ctx context.Context, db bun.IDB) ([]assignmentdb.Assignment, error) {
	if f.ListPendingWithDueDateFunc != nil {
		return f.ListPendingWithDueDateFunc(ctx, db)
	}
	return nil, nil
}

var _ AssignmentLookup = (*FakeAssignmentLookup)(nil)

// ------------------------
// Fake Sender
// ------------------------

type sentNotification struct {
	Target       notificationdb.PushTarget
	Notification push.Notification
}

type FakeSender struct {
	mu   sync.Mutex
	sent []sentNotification

	SendFunc func(ctx context.Context, target notificationdb.PushTarget, n push.Notification) error
}

func (f *FakeSender) Send(ctx context.Context, target notificationdb.PushTarget, n push.Notification) error {
	f.mu.Lock()
	f.sent = append(f.sent, sentNotification{Target: target, Notification: n})
	f.mu.Unlock()
	if f.SendFunc != nil {
		return f.SendFunc(ctx, target, n)
	}
	return nil
}

func (f *FakeSender) Sent() []sentNotification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentNotification, len(f.sent))
	copy(out, f.sent)
	return out
}

var _ push.Sender = (*FakeSender)(nil)
