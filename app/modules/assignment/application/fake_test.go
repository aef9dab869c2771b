package assignmentservice

import (
	"context"
	"sync"
	"time"

	assignmentdb "github.com/Black-And-White-Club/scout-bot/app/modules/assignment/infrastructure/repositories"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Assignment Repo
// ------------------------

type FakeAssignmentRepo struct {
	mu    sync.Mutex
	trace []string

	InsertFunc                 func(ctx context.Context, db bun.IDB, assignment *assignmentdb.Assignment) error
	GetByIDFunc                func(ctx context.Context, db bun.IDB, id uuid.UUID) (*assignmentdb.Assignment, error)
	MarkCompletedFunc          func(ctx context.Context, db bun.IDB, id uuid.UUID, completedAt time.Time) error
	DeleteFunc                 func(ctx context.Context, db bun.IDB, id uuid.UUID) error
	ListByTeamFunc             func(ctx context.Context, db bun.IDB, teamNumber int) ([]assignmentdb.Assignment, error)
	ListPendingWithDueDateFunc func(ctx context.Context, db bun.IDB) ([]assignmentdb.Assignment, error)
}

func NewFakeAssignmentRepo() *FakeAssignmentRepo {
	return &FakeAssignmentRepo{trace: []string{}}
}

func (f *FakeAssignmentRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeAssignmentRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeAssignmentRepo) Insert(ctx context.Context, db bun.IDB, assignment *assignmentdb.Assignment) error {
	f.record("Insert")
	if f.InsertFunc != nil {
		return f.InsertFunc(ctx, db, assignment)
	}
	return nil
}

func (f *FakeAssignmentRepo) GetByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*assignmentdb.Assignment, error) {
	f.record("GetByID")
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, db, id)
	}
	return nil, assignmentdb.ErrNotFound
}

func (f *FakeAssignmentRepo) MarkCompleted(ctx context.Context, db bun.IDB, id uuid.UUID, completedAt time.Time) error {
	f.record("MarkCompleted")
	if f.MarkCompletedFunc != nil {
		return f.MarkCompletedFunc(ctx, db, id, completedAt)
	}
	return nil
}

func (f *FakeAssignmentRepo) Delete(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	f.record("Delete")
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, db, id)
	}
	return nil
}

func (f *FakeAssignmentRepo) ListByTeam(ctx context.Context, db bun.IDB, teamNumber int) ([]assignmentdb.Assignment, error) {
	f.record("ListByTeam")
	if f.ListByTeamFunc != nil {
		return f.ListByTeamFunc(ctx, db, teamNumber)
	}
	return nil, nil
}

func (f *FakeAssignmentRepo) ListPendingWithDueDate(ctx context.Context, db bun.IDB) ([]assignmentdb.Assignment, error) {
	f.record("ListPendingWithDueDate")
	if f.ListPendingWithDueDateFunc != nil {
		return f.ListPendingWithDueDateFunc(ctx, db)
	}
	return nil, nil
}

var _ assignmentdb.Repository = (*FakeAssignmentRepo)(nil)

// ------------------------
// Fake Subscription Cleaner
// ------------------------

type FakeSubscriptionCleaner struct {
	DeleteForAssignmentFunc func(ctx context.Context, db bun.IDB, assignmentID uuid.UUID) (int, error)
	calls                   []uuid.UUID
}

func (f *FakeSubscriptionCleaner) DeleteForAssignment(ctx context.Context, db bun.IDB, assignmentID uuid.UUID) (int, error) {
	f.calls = append(f.calls, assignmentID)
	if f.DeleteForAssignmentFunc != nil {
		return f.DeleteForAssignmentFunc(ctx, db, assignmentID)
	}
	return 0, nil
}

var _ SubscriptionCleaner = (*FakeSubscriptionCleaner)(nil)

// ------------------------
// Fake Publisher
// ------------------------

type publishedMessage struct {
	topic string
	msg   *message.Message
}

type FakePublisher struct {
	mu          sync.Mutex
	PublishFunc func(topic string, messages ...*message.Message) error
	published   []publishedMessage
}

func (f *FakePublisher) Publish(topic string, messages ...*message.Message) error {
	f.mu.Lock()
	for _, m := range messages {
		f.published = append(f.published, publishedMessage{topic: topic, msg: m})
	}
	f.mu.Unlock()
	if f.PublishFunc != nil {
		return f.PublishFunc(topic, messages...)
	}
	return nil
}

func (f *FakePublisher) Published() []publishedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]publishedMessage(nil), f.published...)
}

var _ Publisher = (*FakePublisher)(nil)
