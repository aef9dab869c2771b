package scoutingdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Impl implements Repository using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new scouting repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func matchLockKey(eventCode string, matchNumber int) string {
	return fmt.Sprintf("scouting:%s:%d", eventCode, matchNumber)
}

// WithMatchLock takes a transaction-scoped advisory lock keyed by the match. When db is
// not already a transaction a new one is opened for the duration of fn.
func (r *Impl) WithMatchLock(ctx context.Context, db bun.IDB, eventCode string, matchNumber int, fn func(ctx context.Context, db bun.IDB) error) error {
	locked := func(ctx context.Context, tx bun.IDB) error {
		if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext(?))", matchLockKey(eventCode, matchNumber)); err != nil {
			return fmt.Errorf("scoutingdb.WithMatchLock: %w", err)
		}
		return fn(ctx, tx)
	}

	switch tx := db.(type) {
	case bun.Tx:
		return locked(ctx, tx)
	case *bun.Tx:
		return locked(ctx, tx)
	}

	return r.resolveDB(db).RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return locked(ctx, tx)
	})
}

func (r *Impl) CountAlliance(ctx context.Context, db bun.IDB, eventCode string, matchNumber int, alliance string, excludeID uuid.UUID) (int, error) {
	db = r.resolveDB(db)
	q := db.NewSelect().
		Model((*Entry)(nil)).
		Where("event_code = ?", eventCode).
		Where("match_number = ?", matchNumber).
		Where("alliance = ?", alliance)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("scoutingdb.CountAlliance: %w", err)
	}
	return count, nil
}

func (r *Impl) ExistsForOrganization(ctx context.Context, db bun.IDB, eventCode string, matchNumber, teamNumber int, organization string, excludeID uuid.UUID) (bool, error) {
	db = r.resolveDB(db)
	q := db.NewSelect().
		Model((*Entry)(nil)).
		Where("event_code = ?", eventCode).
		Where("match_number = ?", matchNumber).
		Where("team_number = ?", teamNumber).
		Where("scouter_organization = ?", organization)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	exists, err := q.Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("scoutingdb.ExistsForOrganization: %w", err)
	}
	return exists, nil
}

func (r *Impl) Insert(ctx context.Context, db bun.IDB, entry *Entry) error {
	db = r.resolveDB(db)
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	if _, err := db.NewInsert().Model(entry).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("scoutingdb.Insert: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of an entry. Ownership, organization and
// creation time are never changed here.
func (r *Impl) Update(ctx context.Context, db bun.IDB, entry *Entry) error {
	db = r.resolveDB(db)
	entry.UpdatedAt = time.Now().UTC()

	res, err := db.NewUpdate().
		Model(entry).
		ExcludeColumn("id", "scouter_id", "scouter_organization", "created_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("scoutingdb.Update: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("scoutingdb.Update: rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Impl) Delete(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	db = r.resolveDB(db)
	res, err := db.NewDelete().
		Model((*Entry)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("scoutingdb.Delete: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("scoutingdb.Delete: rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Impl) GetByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*Entry, error) {
	db = r.resolveDB(db)
	entry := new(Entry)
	err := db.NewSelect().
		Model(entry).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scoutingdb.GetByID: %w", err)
	}
	return entry, nil
}

func (r *Impl) ListByTeam(ctx context.Context, db bun.IDB, teamNumber int, viewer Viewer) ([]Entry, error) {
	db = r.resolveDB(db)
	var entries []Entry
	q := db.NewSelect().
		Model(&entries).
		Where("se.team_number = ?", teamNumber)
	err := viewer.Apply(q).
		Order("event_code ASC", "match_number DESC", "created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scoutingdb.ListByTeam: %w", err)
	}
	return entries, nil
}

func (r *Impl) CountByTeam(ctx context.Context, db bun.IDB, teamNumber int, viewer Viewer) (int, error) {
	db = r.resolveDB(db)
	q := db.NewSelect().
		Model((*Entry)(nil)).
		Where("se.team_number = ?", teamNumber)
	count, err := viewer.Apply(q).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("scoutingdb.CountByTeam: %w", err)
	}
	return count, nil
}

func (r *Impl) ListAutoPaths(ctx context.Context, db bun.IDB, teamNumber int, viewer Viewer) ([]AutoPath, error) {
	db = r.resolveDB(db)
	var paths []AutoPath
	q := db.NewSelect().
		Model((*Entry)(nil)).
		Column("id", "event_code", "match_number", "auto_path", "auto_notes").
		Where("se.team_number = ?", teamNumber).
		Where("se.auto_path <> ''")
	err := viewer.Apply(q).
		Order("event_code ASC", "match_number ASC").
		Scan(ctx, &paths)
	if err != nil {
		return nil, fmt.Errorf("scoutingdb.ListAutoPaths: %w", err)
	}
	return paths, nil
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == "23505"
}
