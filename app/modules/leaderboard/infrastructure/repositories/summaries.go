package leaderboarddb

import (
	"context"
	"fmt"

	scoutingdb "github.com/Black-And-White-Club/scout-bot/app/modules/scouting/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// Impl implements Repository using Bun ORM.
type Impl struct {
	db bun.IDB
}

func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db != nil {
		return db
	}
	return r.db
}

var sumColumns = []string{
	"auto_coral_level1", "auto_coral_level2", "auto_coral_level3", "auto_coral_level4",
	"auto_algae_net", "auto_algae_processor",
	"teleop_coral_level1", "teleop_coral_level2", "teleop_coral_level3", "teleop_coral_level4",
	"teleop_algae_net", "teleop_algae_processor",
}

// matchColumns are reported per match with auto and teleop added together.
var matchColumns = []string{
	"coral_level1", "coral_level2", "coral_level3", "coral_level4",
	"algae_net", "algae_processor",
}

func (f Filter) apply(q *bun.SelectQuery) *bun.SelectQuery {
	if f.EventCode != "" {
		q = q.Where("se.event_code = ?", f.EventCode)
	}
	if len(f.TeamNumbers) > 0 {
		q = q.Where("se.team_number IN (?)", bun.In(f.TeamNumbers))
	}
	if f.Viewer != nil {
		q = f.Viewer.Apply(q)
	}
	return q
}

func (r *Impl) TeamTotals(ctx context.Context, db bun.IDB, filter Filter) ([]TeamTotals, error) {
	q := r.resolveDB(db).NewSelect().
		Model((*scoutingdb.Entry)(nil)).
		ColumnExpr("se.team_number").
		ColumnExpr("COUNT(*) AS matches")

	for _, col := range sumColumns {
		q = q.ColumnExpr("COALESCE(SUM(?), 0) AS ?", bun.Ident("se."+col), bun.Ident(col))
	}

	q = q.
		ColumnExpr("COUNT(*) FILTER (WHERE se.climb_success) AS climb_successes").
		ColumnExpr("COUNT(*) FILTER (WHERE se.climb_type = ?) AS deep_attempts", scoutingdb.ClimbDeep).
		ColumnExpr("COUNT(*) FILTER (WHERE se.climb_type = ? AND se.climb_success) AS deep_successes", scoutingdb.ClimbDeep).
		ColumnExpr("COALESCE(SUM(se.defense_rating), 0) AS defense_total")

	var totals []TeamTotals
	err := filter.apply(q).GroupExpr("se.team_number").
		OrderExpr("se.team_number ASC").
		Scan(ctx, &totals)
	if err != nil {
		return nil, fmt.Errorf("leaderboarddb.TeamTotals: %w", err)
	}
	return totals, nil
}

func (r *Impl) RecentEntries(ctx context.Context, db bun.IDB, teamNumber, limit int, viewer *scoutingdb.Viewer) ([]scoutingdb.Entry, error) {
	var entries []scoutingdb.Entry
	q := r.resolveDB(db).NewSelect().
		Model(&entries).
		Where("se.team_number = ?", teamNumber)
	err := Filter{Viewer: viewer}.apply(q).
		OrderExpr("se.match_number DESC, se.created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaderboarddb.RecentEntries: %w", err)
	}
	return entries, nil
}

func (r *Impl) AllianceTotals(ctx context.Context, db bun.IDB, filter Filter) ([]AllianceTotals, error) {
	q := r.resolveDB(db).NewSelect().
		Model((*scoutingdb.Entry)(nil)).
		ColumnExpr("se.event_code, se.match_number, se.alliance").
		ColumnExpr("COUNT(*) AS entries")

	for _, col := range matchColumns {
		q = q.ColumnExpr("COALESCE(SUM(? + ?), 0) AS ?",
			bun.Ident("se.auto_"+col), bun.Ident("se.teleop_"+col), bun.Ident(col))
	}

	var totals []AllianceTotals
	err := filter.apply(q).
		GroupExpr("se.event_code, se.match_number, se.alliance").
		OrderExpr("se.event_code ASC, se.match_number ASC, se.alliance ASC").
		Scan(ctx, &totals)
	if err != nil {
		return nil, fmt.Errorf("leaderboarddb.AllianceTotals: %w", err)
	}
	return totals, nil
}

func (r *Impl) MatchRows(ctx context.Context, db bun.IDB, filter Filter) ([]MatchRow, error) {
	q := r.resolveDB(db).NewSelect().
		Model((*scoutingdb.Entry)(nil)).
		ColumnExpr("se.event_code, se.match_number, se.alliance, se.team_number").
		ColumnExpr("se.climb_type, se.climb_success")

	for _, col := range matchColumns {
		q = q.ColumnExpr("? + ? AS ?",
			bun.Ident("se.auto_"+col), bun.Ident("se.teleop_"+col), bun.Ident(col))
	}

	var rows []MatchRow
	err := filter.apply(q).
		OrderExpr("se.event_code ASC, se.match_number ASC, se.alliance ASC, se.team_number ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("leaderboarddb.MatchRows: %w", err)
	}
	return rows, nil
}
