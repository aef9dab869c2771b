package leaderboardservice

import (
	"context"
	"sync"

	leaderboarddb "github.com/Black-And-White-Club/scout-bot/app/modules/leaderboard/infrastructure/repositories"
	"github.com/Black-And-White-Club/scout-bot/app/modules/leaderboard/infrastructure/teaminfo"
	scoutingdb "github.com/Black-And-White-Club/scout-bot/app/modules/scouting/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Leaderboard Repo
// ------------------------

type FakeLeaderboardRepo struct {
	mu    sync.Mutex
	trace []string

	TeamTotalsFunc     func(ctx context.Context, db bun.IDB, filter leaderboarddb.Filter) ([]leaderboarddb.TeamTotals, error)
	RecentEntriesFunc  func(ctx context.Context, db bun.IDB, teamNumber, limit int, viewer *scoutingdb.Viewer) ([]scoutingdb.Entry, error)
	AllianceTotalsFunc func(ctx context.Context, db bun.IDB, filter leaderboarddb.Filter) ([]leaderboarddb.AllianceTotals, error)
	MatchRowsFunc      func(ctx context.Context, db bun.IDB, filter leaderboarddb.Filter) ([]leaderboarddb.MatchRow, error)
}

func NewFakeLeaderboardRepo() *FakeLeaderboardRepo {
	return &FakeLeaderboardRepo{trace: []string{}}
}

func (f *FakeLeaderboardRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeLeaderboardRepo) TeamTotals(ctx context.Context, db bun.IDB, filter leaderboarddb.Filter) ([]leaderboarddb.TeamTotals, error) {
	f.record("TeamTotals")
	if f.TeamTotalsFunc != nil {
		return f.TeamTotalsFunc(ctx, db, filter)
	}
	return nil, nil
}

func (f *FakeLeaderboardRepo) RecentEntries(ctx context.Context, db bun.IDB, teamNumber, limit int, viewer *scoutingdb.Viewer) ([]scoutingdb.Entry, error) {
	f.record("RecentEntries")
	if f.RecentEntriesFunc != nil {
		return f.RecentEntriesFunc(ctx, db, teamNumber, limit, viewer)
	}
	return nil, nil
}

func (f *FakeLeaderboardRepo) AllianceTotals(ctx context.Context, db bun.IDB, filter leaderboarddb.Filter) ([]leaderboarddb.AllianceTotals, error) {
	f.record("AllianceTotals")
	if f.AllianceTotalsFunc != nil {
		return f.AllianceTotalsFunc(ctx, db, filter)
	}
	return nil, nil
}

func (f *FakeLeaderboardRepo) MatchRows(ctx context.Context, db bun.IDB, filter leaderboarddb.Filter) ([]leaderboarddb.MatchRow, error) {
	f.record("MatchRows")
	if f.MatchRowsFunc != nil {
		return f.MatchRowsFunc(ctx, db, filter)
	}
	return nil, nil
}

func (f *FakeLeaderboardRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ leaderboarddb.Repository = (*FakeLeaderboardRepo)(nil)

// ------------------------
// Fake Team Lookup
// ------------------------

type FakeTeamLookup struct {
	GetTeamFunc func(ctx context.Context, teamNumber int) (*teaminfo.Team, error)
}

func (f *FakeTeamLookup) GetTeam(ctx context.Context, teamNumber int) (*teaminfo.Team, error) {
	if f.GetTeamFunc != nil {
		return f.GetTeamFunc(ctx, teamNumber)
	}
	return nil, teaminfo.ErrTeamNotFound
}

var _ teaminfo.Lookup = (*FakeTeamLookup)(nil)
