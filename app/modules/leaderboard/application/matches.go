package leaderboardservice

import (
	"context"

	authdomain "github.com/Black-And-White-Club/scout-bot/app/modules/auth/domain"
	leaderboarddb "github.com/Black-And-White-Club/scout-bot/app/modules/leaderboard/infrastructure/repositories"
	scoutingdb "github.com/Black-And-White-Club/scout-bot/app/modules/scouting/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// AllianceCoral counts coral scored on each reef level.
type AllianceCoral struct {
	Level1 int `json:"level1"`
	Level2 int `json:"level2"`
	Level3 int `json:"level3"`
	Level4 int `json:"level4"`
}

// MatchTeamRow is one scouted team within a match.
type MatchTeamRow struct {
	Number         int    `json:"number"`
	CoralLevel1    int    `json:"coral_level1"`
	CoralLevel2    int    `json:"coral_level2"`
	CoralLevel3    int    `json:"coral_level3"`
	CoralLevel4    int    `json:"coral_level4"`
	AlgaeNet       int    `json:"algae_net"`
	AlgaeProcessor int    `json:"algae_processor"`
	ClimbType      string `json:"climb_type"`
	ClimbSuccess   bool   `json:"climb_success"`
}

// AllianceSummary totals one alliance of a match.
type AllianceSummary struct {
	Coral          AllianceCoral  `json:"coral"`
	AlgaeNet       int            `json:"algae_net"`
	AlgaeProcessor int            `json:"algae_processor"`
	Teams          []MatchTeamRow `json:"teams"`
}

// MatchSummary is the red and blue view of one match.
type MatchSummary struct {
	EventCode   string          `json:"event_code"`
	MatchNumber int             `json:"match_number"`
	Red         AllianceSummary `json:"red"`
	Blue        AllianceSummary `json:"blue"`
}

type matchKey struct {
	event string
	match int
}

func (s *LeaderboardService) MatchSummaries(ctx context.Context, eventCode string, scout authdomain.Scout) ([]MatchSummary, error) {
	filter := leaderboarddb.Filter{EventCode: eventCode, Viewer: viewerOf(scout)}

	return query(ctx, s, "MatchSummaries", eventCode, func(ctx context.Context, db bun.IDB) ([]MatchSummary, error) {
		totals, err := s.repo.AllianceTotals(ctx, db, filter)
		if err != nil {
			return nil, err
		}
		rows, err := s.repo.MatchRows(ctx, db, filter)
		if err != nil {
			return nil, err
		}
		return buildMatchSummaries(totals, rows), nil
	})
}

func buildMatchSummaries(totals []leaderboarddb.AllianceTotals, rows []leaderboarddb.MatchRow) []MatchSummary {
	out := []MatchSummary{}
	index := map[matchKey]int{}

	summaryFor := func(event string, match int) *MatchSummary {
		k := matchKey{event, match}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, MatchSummary{
				EventCode:   event,
				MatchNumber: match,
				Red:         AllianceSummary{Teams: []MatchTeamRow{}},
				Blue:        AllianceSummary{Teams: []MatchTeamRow{}},
			})
		}
		return &out[i]
	}

	for _, t := range totals {
		a := summaryFor(t.EventCode, t.MatchNumber).side(t.Alliance)
		if a == nil {
			continue
		}
		a.Coral = AllianceCoral{t.CoralLevel1, t.CoralLevel2, t.CoralLevel3, t.CoralLevel4}
		a.AlgaeNet = t.AlgaeNet
		a.AlgaeProcessor = t.AlgaeProcessor
	}

	for _, r := range rows {
		a := summaryFor(r.EventCode, r.MatchNumber).side(r.Alliance)
		if a == nil {
			continue
		}
		a.Teams = append(a.Teams, MatchTeamRow{
			Number:         r.TeamNumber,
			CoralLevel1:    r.CoralLevel1,
			CoralLevel2:    r.CoralLevel2,
			CoralLevel3:    r.CoralLevel3,
			CoralLevel4:    r.CoralLevel4,
			AlgaeNet:       r.AlgaeNet,
			AlgaeProcessor: r.AlgaeProcessor,
			ClimbType:      r.ClimbType,
			ClimbSuccess:   r.ClimbSuccess,
		})
	}
	return out
}

func (m *MatchSummary) side(alliance string) *AllianceSummary {
	switch alliance {
	case scoutingdb.AllianceRed:
		return &m.Red
	case scoutingdb.AllianceBlue:
		return &m.Blue
	}
	return nil
}
