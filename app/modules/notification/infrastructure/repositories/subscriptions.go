package notificationdb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// tupleConflict is the conflict target matching uq_push_subscriptions_tuple.
const tupleConflict = "CONFLICT (user_id, team_number, (COALESCE(assignment_id, '00000000-0000-0000-0000-000000000000'::uuid)))"

const deliverable = "ps.subscription->>'endpoint' <> ''"

// Impl implements Repository using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new subscription repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) ListDue(ctx context.Context, db bun.IDB, now time.Time) ([]Subscription, error) {
	db = r.resolveDB(db)
	var subs []Subscription
	err := db.NewSelect().
		Model(&subs).
		Where("ps.scheduled_time <= ?", now).
		Where("ps.sent = false").
		Where("ps.status = ?", StatusPending).
		Order("ps.scheduled_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("notificationdb.ListDue: %w", err)
	}
	return subs, nil
}

func (r *Impl) MarkSent(ctx context.Context, db bun.IDB, id uuid.UUID, sentAt time.Time) (bool, error) {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Subscription)(nil)).
		Set("sent = true").
		Set("sent_at = ?", sentAt).
		Set("status = ?", StatusSent).
		Set("updated_at = ?", sentAt).
		Where("id = ?", id).
		Where("sent = false").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("notificationdb.MarkSent: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("notificationdb.MarkSent: rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *Impl) MarkFailed(ctx context.Context, db bun.IDB, id uuid.UUID, message string) error {
	db = r.resolveDB(db)
	_, err := db.NewUpdate().
		Model((*Subscription)(nil)).
		Set("status = ?", StatusError).
		Set("error_message = ?", message).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("sent = false").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("notificationdb.MarkFailed: %w", err)
	}
	return nil
}

func (r *Impl) DeleteByIDs(ctx context.Context, db bun.IDB, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	db = r.resolveDB(db)
	res, err := db.NewDelete().
		Model((*Subscription)(nil)).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("notificationdb.DeleteByIDs: %w", err)
	}
	return affected(res, "notificationdb.DeleteByIDs")
}

func prepare(sub *Subscription) {
	now := time.Now().UTC()
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	if sub.UpdatedAt.IsZero() {
		sub.UpdatedAt = now
	}
	if sub.Status == "" {
		sub.Status = StatusPending
	}
}

func (r *Impl) InsertDerived(ctx context.Context, db bun.IDB, sub *Subscription) (bool, error) {
	db = r.resolveDB(db)
	prepare(sub)

	res, err := db.NewInsert().
		Model(sub).
		On(tupleConflict + " DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("notificationdb.InsertDerived: %w", err)
	}
	n, err := affected(res, "notificationdb.InsertDerived")
	return n > 0, err
}

func (r *Impl) Upsert(ctx context.Context, db bun.IDB, sub *Subscription, reschedule bool) (bool, error) {
	db = r.resolveDB(db)
	prepare(sub)

	exists, err := tupleQuery(db, sub.UserID, sub.TeamNumber, sub.AssignmentID).Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("notificationdb.Upsert: lookup: %w", err)
	}

	q := db.NewInsert().
		Model(sub).
		On(tupleConflict + " DO UPDATE").
		Set("subscription = EXCLUDED.subscription").
		Set("reminder_minutes = EXCLUDED.reminder_minutes").
		Set("updated_at = EXCLUDED.updated_at")
	if reschedule {
		q = q.
			Set("scheduled_time = EXCLUDED.scheduled_time").
			Set("sent = false").
			Set("sent_at = NULL").
			Set("status = ?", StatusPending).
			Set("error_message = ''").
			Set("title = EXCLUDED.title").
			Set("body = EXCLUDED.body").
			Set("url = EXCLUDED.url").
			Set("data = EXCLUDED.data")
	}
	if _, err := q.Exec(ctx); err != nil {
		return false, fmt.Errorf("notificationdb.Upsert: %w", err)
	}
	return !exists, nil
}

func tupleQuery(db bun.IDB, userID string, teamNumber int, assignmentID *uuid.UUID) *bun.SelectQuery {
	q := db.NewSelect().
		Model((*Subscription)(nil)).
		Where("ps.user_id = ?", userID).
		Where("ps.team_number = ?", teamNumber)
	if assignmentID == nil {
		return q.Where("ps.assignment_id IS NULL")
	}
	return q.Where("ps.assignment_id = ?", *assignmentID)
}

func (r *Impl) DeleteMatching(ctx context.Context, db bun.IDB, userID string, teamNumber int, assignmentID *uuid.UUID) (int, error) {
	db = r.resolveDB(db)
	q := db.NewDelete().
		Model((*Subscription)(nil)).
		Where("user_id = ?", userID)
	if teamNumber > 0 {
		q = q.Where("team_number = ?", teamNumber)
	}
	if assignmentID != nil {
		q = q.Where("assignment_id = ?", *assignmentID)
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("notificationdb.DeleteMatching: %w", err)
	}
	return affected(res, "notificationdb.DeleteMatching")
}

func (r *Impl) DeleteForAssignment(ctx context.Context, db bun.IDB, assignmentID uuid.UUID) (int, error) {
	db = r.resolveDB(db)
	res, err := db.NewDelete().
		Model((*Subscription)(nil)).
		Where("assignment_id = ?", assignmentID).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("notificationdb.DeleteForAssignment: %w", err)
	}
	return affected(res, "notificationdb.DeleteForAssignment")
}

func (r *Impl) ListGeneralForTeam(ctx context.Context, db bun.IDB, teamNumber int) ([]Subscription, error) {
	db = r.resolveDB(db)
	var subs []Subscription
	err := db.NewSelect().
		Model(&subs).
		Where("ps.team_number = ?", teamNumber).
		Where("ps.assignment_id IS NULL").
		Where(deliverable).
		Order("ps.user_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("notificationdb.ListGeneralForTeam: %w", err)
	}
	return subs, nil
}

func (r *Impl) ListAssignmentUserIDs(ctx context.Context, db bun.IDB, assignmentID uuid.UUID) ([]string, error) {
	db = r.resolveDB(db)
	var userIDs []string
	err := db.NewSelect().
		Model((*Subscription)(nil)).
		Column("ps.user_id").
		Distinct().
		Where("ps.assignment_id = ?", assignmentID).
		Scan(ctx, &userIDs)
	if err != nil {
		return nil, fmt.Errorf("notificationdb.ListAssignmentUserIDs: %w", err)
	}
	return userIDs, nil
}

func (r *Impl) LatestForUsers(ctx context.Context, db bun.IDB, teamNumber int, userIDs []string, since time.Time) ([]Subscription, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	db = r.resolveDB(db)
	var subs []Subscription
	err := db.NewSelect().
		Model(&subs).
		DistinctOn("ps.user_id").
		Where("ps.team_number = ?", teamNumber).
		Where("ps.user_id IN (?)", bun.In(userIDs)).
		Where("ps.updated_at >= ?", since).
		Where(deliverable).
		OrderExpr("ps.user_id ASC, ps.updated_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("notificationdb.LatestForUsers: %w", err)
	}
	return subs, nil
}

type rowsAffected interface {
	RowsAffected() (int64, error)
}

func affected(res rowsAffected, op string) (int, error) {
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: rows affected: %w", op, err)
	}
	return int(rows), nil
}
