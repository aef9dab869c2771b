package assignmentdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements Repository using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new assignment repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) Insert(ctx context.Context, db bun.IDB, assignment *Assignment) error {
	db = r.resolveDB(db)
	if assignment.ID == uuid.Nil {
		assignment.ID = uuid.New()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}
	if assignment.Status == "" {
		assignment.Status = StatusPending
	}
	if assignment.AssignedTo == nil {
		assignment.AssignedTo = []string{}
	}

	if _, err := db.NewInsert().Model(assignment).Exec(ctx); err != nil {
		return fmt.Errorf("assignmentdb.Insert: %w", err)
	}
	return nil
}

func (r *Impl) GetByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*Assignment, error) {
	db = r.resolveDB(db)
	assignment := new(Assignment)
	err := db.NewSelect().
		Model(assignment).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("assignmentdb.GetByID: %w", err)
	}
	return assignment, nil
}

func (r *Impl) MarkCompleted(ctx context.Context, db bun.IDB, id uuid.UUID, completedAt time.Time) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Assignment)(nil)).
		Set("status = ?", StatusCompleted).
		Set("completed_at = ?", completedAt).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("assignmentdb.MarkCompleted: %w", err)
	}
	return requireRow(res, "assignmentdb.MarkCompleted")
}

func (r *Impl) Delete(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	db = r.resolveDB(db)
	res, err := db.NewDelete().
		Model((*Assignment)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("assignmentdb.Delete: %w", err)
	}
	return requireRow(res, "assignmentdb.Delete")
}

func (r *Impl) ListByTeam(ctx context.Context, db bun.IDB, teamNumber int) ([]Assignment, error) {
	db = r.resolveDB(db)
	var assignments []Assignment
	err := db.NewSelect().
		Model(&assignments).
		Where("team_number = ?", teamNumber).
		OrderExpr("due_date ASC NULLS LAST").
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("assignmentdb.ListByTeam: %w", err)
	}
	return assignments, nil
}

func (r *Impl) ListPendingWithDueDate(ctx context.Context, db bun.IDB) ([]Assignment, error) {
	db = r.resolveDB(db)
	var assignments []Assignment
	err := db.NewSelect().
		Model(&assignments).
		Where("status = ?", StatusPending).
		Where("due_date IS NOT NULL").
		Order("due_date ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("assignmentdb.ListPendingWithDueDate: %w", err)
	}
	return assignments, nil
}

func requireRow(res sql.Result, op string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
