package leaderboardhandlers

import (
	"context"

	authdomain "github.com/Black-And-White-Club/scout-bot/app/modules/auth/domain"
	leaderboardservice "github.com/Black-And-White-Club/scout-bot/app/modules/leaderboard/application"
)

// FakeService is a programmable fake for leaderboardservice.Service.
type FakeService struct {
	LeaderboardFunc       func(ctx context.Context, key leaderboardservice.SortKey, eventCode string) ([]leaderboardservice.TeamStats, error)
	TeamStatsFunc         func(ctx context.Context, teamNumber int) (leaderboardservice.TeamStats, error)
	CompareFunc           func(ctx context.Context, teamNumbers []int, scout authdomain.Scout) ([]leaderboardservice.TeamComparison, error)
	CompareChartFunc      func(ctx context.Context, teamNumbers []int, scout authdomain.Scout) ([]byte, error)
	ExportLeaderboardFunc func(ctx context.Context, key leaderboardservice.SortKey, eventCode string) ([]byte, error)
	MatchSummariesFunc    func(ctx context.Context, eventCode string, scout authdomain.Scout) ([]leaderboardservice.MatchSummary, error)
}

func (f *FakeService) Leaderboard(ctx context.Context, key leaderboardservice.SortKey, eventCode string) ([]leaderboardservice.TeamStats, error) {
	if f.LeaderboardFunc != nil {
		return f.LeaderboardFunc(ctx, key, eventCode)
	}
	return nil, nil
}

func (f *FakeService) TeamStats(ctx context.Context, teamNumber int) (leaderboardservice.TeamStats, error) {
	if f.TeamStatsFunc != nil {
		return f.TeamStatsFunc(ctx, teamNumber)
	}
	return leaderboardservice.TeamStats{TeamNumber: teamNumber}, nil
}

func (f *FakeService) Compare(ctx context.Context, teamNumbers []int, scout authdomain.Scout) ([]leaderboardservice.TeamComparison, error) {
	if f.CompareFunc != nil {
		return f.CompareFunc(ctx, teamNumbers, scout)
	}
	return nil, nil
}

func (f *FakeService) CompareChart(ctx context.Context, teamNumbers []int, scout authdomain.Scout) ([]byte, error) {
	if f.CompareChartFunc != nil {
		return f.CompareChartFunc(ctx, teamNumbers, scout)
	}
	return nil, nil
}

func (f *FakeService) ExportLeaderboard(ctx context.Context, key leaderboardservice.SortKey, eventCode string) ([]byte, error) {
	if f.ExportLeaderboardFunc != nil {
		return f.ExportLeaderboardFunc(ctx, key, eventCode)
	}
	return nil, nil
}

func (f *FakeService) MatchSummaries(ctx context.Context, eventCode string, scout authdomain.Scout) ([]leaderboardservice.MatchSummary, error) {
	if f.MatchSummariesFunc != nil {
		return f.MatchSummariesFunc(ctx, eventCode, scout)
	}
	return nil, nil
}

var _ leaderboardservice.Service = (*FakeService)(nil)
