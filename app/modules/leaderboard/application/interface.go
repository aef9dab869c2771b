package leaderboardservice

import (
	"context"
	"errors"

	authdomain "github.com/Black-And-White-Club/scout-bot/app/modules/auth/domain"
	"github.com/Black-And-White-Club/scout-bot/app/modules/leaderboard/infrastructure/teaminfo"
	scoutingdb "github.com/Black-And-White-Club/scout-bot/app/modules/scouting/infrastructure/repositories"
)

// ErrInvalidComparison is returned when Compare is not given 2 or 3 distinct teams.
var ErrInvalidComparison = errors.New("compare needs 2 or 3 distinct positive team numbers")

// RecentMatchLimit is how many entries Compare returns per team.
const RecentMatchLimit = 5

// TeamComparison is one column of a comparison.
type TeamComparison struct {
	Team          teaminfo.Team      `json:"team"`
	Stats         TeamStats          `json:"stats"`
	Normalized    NormalizedStats    `json:"normalized_stats"`
	RecentMatches []scoutingdb.Entry `json:"matches"`
}

// Service defines the read-only aggregation operations.
type Service interface {
	// Leaderboard ranks every scouted team. An empty eventCode covers all events.
	Leaderboard(ctx context.Context, key SortKey, eventCode string) ([]TeamStats, error)

	// TeamStats aggregates one team, returning zero stats when it has no entries.
	TeamStats(ctx context.Context, teamNumber int) (TeamStats, error)

	// Compare returns stats, normalized stats and recent matches for 2 or 3 teams,
	// built only from entries scout may see.
	Compare(ctx context.Context, teamNumbers []int, scout authdomain.Scout) ([]TeamComparison, error)

	// CompareChart renders the normalized stats of a comparison as a PNG.
	CompareChart(ctx context.Context, teamNumbers []int, scout authdomain.Scout) ([]byte, error)

	// MatchSummaries splits each match into red and blue alliance totals with the
	// scouted teams of each side. Only entries scout may see are included. An empty
	// eventCode covers all events.
	MatchSummaries(ctx context.Context, eventCode string, scout authdomain.Scout) ([]MatchSummary, error)

	// ExportLeaderboard renders the leaderboard as an xlsx workbook.
	ExportLeaderboard(ctx context.Context, key SortKey, eventCode string) ([]byte, error)
}
