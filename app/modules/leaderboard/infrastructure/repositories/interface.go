package leaderboarddb

import (
	"context"

	scoutingdb "github.com/Black-And-White-Club/scout-bot/app/modules/scouting/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// Repository defines the read-only summary queries over scouting entries.
type Repository interface {
	// TeamTotals groups matching entries by team number, ordered by team number.
	// Teams without entries are absent.
	TeamTotals(ctx context.Context, db bun.IDB, filter Filter) ([]TeamTotals, error)

	// AllianceTotals groups matching entries by event, match and alliance, ordered
	// by event code then match number.
	AllianceTotals(ctx context.Context, db bun.IDB, filter Filter) ([]AllianceTotals, error)

	// MatchRows returns matching entries in the same order as AllianceTotals, then
	// by alliance and team number.
	MatchRows(ctx context.Context, db bun.IDB, filter Filter) ([]MatchRow, error)

	// RecentEntries returns up to limit entries for a team, highest match number first.
	// A non-nil viewer keeps only entries it may see.
	RecentEntries(ctx context.Context, db bun.IDB, teamNumber, limit int, viewer *scoutingdb.Viewer) ([]scoutingdb.Entry, error)
}
