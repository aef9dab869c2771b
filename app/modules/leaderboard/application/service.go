package leaderboardservice

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	authdomain "github.com/Black-And-White-Club/scout-bot/app/modules/auth/domain"
	leaderboarddb "github.com/Black-And-White-Club/scout-bot/app/modules/leaderboard/infrastructure/repositories"
	"github.com/Black-And-White-Club/scout-bot/app/modules/leaderboard/infrastructure/teaminfo"
	scoutingdb "github.com/Black-And-White-Club/scout-bot/app/modules/scouting/infrastructure/repositories"
	"github.com/Black-And-White-Club/scout-bot/internal/observability/attr"
	"github.com/Black-And-White-Club/scout-bot/internal/observability/metrics"
	"github.com/Black-And-White-Club/scout-bot/internal/operation"
	"github.com/Black-And-White-Club/scout-bot/internal/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// LeaderboardService implements the Service interface.
type LeaderboardService struct {
	repo    leaderboarddb.Repository
	teams   teaminfo.Lookup
	runner  *operation.Runner
	logger  *slog.Logger
	palette ChartPalette
}

// NewLeaderboardService creates a new LeaderboardService. teams may be nil, in which
// case comparisons carry only team numbers.
func NewLeaderboardService(
	repo leaderboarddb.Repository,
	teams teaminfo.Lookup,
	logger *slog.Logger,
	m metrics.ServiceMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *LeaderboardService {
	runner := operation.NewRunner("LeaderboardService", logger, m, tracer, db)
	return &LeaderboardService{
		repo:    repo,
		teams:   teams,
		runner:  runner,
		logger:  runner.Logger,
		palette: DefaultPalette,
	}
}

var _ Service = (*LeaderboardService)(nil)

// query runs a read-only operation and unwraps its success value.
func query[T any](ctx context.Context, s *LeaderboardService, op, id string, fn func(ctx context.Context, db bun.IDB) (T, error)) (T, error) {
	result, err := operation.Read(ctx, s.runner, op, id, func(ctx context.Context, db bun.IDB) (results.OperationResult[T, struct{}], error) {
		v, err := fn(ctx, db)
		if err != nil {
			return results.OperationResult[T, struct{}]{}, err
		}
		return results.SuccessResult[T, struct{}](v), nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return *result.Success, nil
}

// viewerOf scopes reads to the scout's organization and the scout's own entries.
func viewerOf(scout authdomain.Scout) *scoutingdb.Viewer {
	return &scoutingdb.Viewer{Organization: scout.Organization(), ScouterID: scout.ID}
}

func (s *LeaderboardService) Leaderboard(ctx context.Context, key SortKey, eventCode string) ([]TeamStats, error) {
	return query(ctx, s, "Leaderboard", string(key), func(ctx context.Context, db bun.IDB) ([]TeamStats, error) {
		totals, err := s.repo.TeamTotals(ctx, db, leaderboarddb.Filter{EventCode: eventCode})
		if err != nil {
			return nil, err
		}
		return rank(totals, key), nil
	})
}

func (s *LeaderboardService) TeamStats(ctx context.Context, teamNumber int) (TeamStats, error) {
	return query(ctx, s, "TeamStats", strconv.Itoa(teamNumber), func(ctx context.Context, db bun.IDB) (TeamStats, error) {
		totals, err := s.repo.TeamTotals(ctx, db, leaderboarddb.Filter{TeamNumbers: []int{teamNumber}})
		if err != nil {
			return TeamStats{}, err
		}
		return statsFromTotals(totalsFor(totals, teamNumber)), nil
	})
}

func totalsFor(totals []leaderboarddb.TeamTotals, teamNumber int) leaderboarddb.TeamTotals {
	for _, t := range totals {
		if t.TeamNumber == teamNumber {
			return t
		}
	}
	return leaderboarddb.TeamTotals{TeamNumber: teamNumber}
}

func validateComparison(teamNumbers []int) error {
	if len(teamNumbers) < 2 || len(teamNumbers) > 3 {
		return ErrInvalidComparison
	}
	seen := make(map[int]struct{}, len(teamNumbers))
	for _, n := range teamNumbers {
		if n <= 0 {
			return ErrInvalidComparison
		}
		if _, dup := seen[n]; dup {
			return ErrInvalidComparison
		}
		seen[n] = struct{}{}
	}
	return nil
}

func (s *LeaderboardService) Compare(ctx context.Context, teamNumbers []int, scout authdomain.Scout) ([]TeamComparison, error) {
	if err := validateComparison(teamNumbers); err != nil {
		return nil, err
	}

	comparisons, err := query(ctx, s, "Compare", fmt.Sprint(teamNumbers), func(ctx context.Context, db bun.IDB) ([]TeamComparison, error) {
		viewer := viewerOf(scout)
		totals, err := s.repo.TeamTotals(ctx, db, leaderboarddb.Filter{TeamNumbers: teamNumbers, Viewer: viewer})
		if err != nil {
			return nil, err
		}

		out := make([]TeamComparison, 0, len(teamNumbers))
		for _, n := range teamNumbers {
			t := totalsFor(totals, n)
			recent, err := s.repo.RecentEntries(ctx, db, n, RecentMatchLimit, viewer)
			if err != nil {
				return nil, err
			}
			out = append(out, TeamComparison{
				Team:          teaminfo.Team{TeamNumber: n},
				Stats:         statsFromTotals(t),
				Normalized:    normalize(t),
				RecentMatches: recent,
			})
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	for i := range comparisons {
		comparisons[i].Team = s.lookupTeam(ctx, comparisons[i].Team.TeamNumber)
	}
	return comparisons, nil
}

// lookupTeam enriches a team number with metadata. Lookup failures degrade to the
// bare number.
func (s *LeaderboardService) lookupTeam(ctx context.Context, teamNumber int) teaminfo.Team {
	fallback := teaminfo.Team{
		TeamNumber: teamNumber,
		Key:        "frc" + strconv.Itoa(teamNumber),
		Nickname:   "Unknown",
	}
	if s.teams == nil {
		return fallback
	}
	team, err := s.teams.GetTeam(ctx, teamNumber)
	if err != nil {
		s.logger.WarnContext(ctx, "Team metadata lookup failed",
			attr.ExtractCorrelationID(ctx),
			attr.Int("team_number", teamNumber),
			attr.Error(err),
		)
		return fallback
	}
	return *team
}

func (s *LeaderboardService) CompareChart(ctx context.Context, teamNumbers []int, scout authdomain.Scout) ([]byte, error) {
	comparisons, err := s.Compare(ctx, teamNumbers, scout)
	if err != nil {
		return nil, err
	}
	return GenerateComparisonChart(comparisons, s.palette)
}

func (s *LeaderboardService) ExportLeaderboard(ctx context.Context, key SortKey, eventCode string) ([]byte, error) {
	stats, err := s.Leaderboard(ctx, key, eventCode)
	if err != nil {
		return nil, err
	}
	return ExportWorkbook(stats, key, eventCode)
}
