package leaderboardservice

import (
	"cmp"
	"math"
	"slices"

	leaderboarddb "github.com/Black-And-White-Club/scout-bot/app/modules/leaderboard/infrastructure/repositories"
)

// SortKey selects the leaderboard ranking column.
type SortKey string

const (
	SortCoral       SortKey = "coral"
	SortAutoCoral   SortKey = "auto_coral"
	SortTeleopCoral SortKey = "teleop_coral"
	SortAlgae       SortKey = "algae"
	SortAutoAlgae   SortKey = "auto_algae"
	SortTeleopAlgae SortKey = "teleop_algae"
	SortDeepClimb   SortKey = "deep_climb"
	SortDefense     SortKey = "defense"
)

// ParseSortKey maps user input to a SortKey, defaulting to SortCoral.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(s); k {
	case SortCoral, SortAutoCoral, SortTeleopCoral, SortAlgae, SortAutoAlgae,
		SortTeleopAlgae, SortDeepClimb, SortDefense:
		return k
	}
	return SortCoral
}

// CoralLevels are per-match averages for each coral level.
type CoralLevels struct {
	Level1 float64 `json:"level1"`
	Level2 float64 `json:"level2"`
	Level3 float64 `json:"level3"`
	Level4 float64 `json:"level4"`
}

// AlgaeStats are per-match averages for each algae target.
type AlgaeStats struct {
	Net       float64 `json:"net"`
	Processor float64 `json:"processor"`
}

// TeamStats is the rolled-up view of one team. Every float is rounded to one decimal.
type TeamStats struct {
	TeamNumber    int `json:"team_number"`
	MatchesPlayed int `json:"matches_played"`

	AutoCoral   CoralLevels `json:"auto_coral_stats"`
	TeleopCoral CoralLevels `json:"teleop_coral_stats"`
	AutoAlgae   AlgaeStats  `json:"auto_algae_stats"`
	TeleopAlgae AlgaeStats  `json:"teleop_algae_stats"`

	TotalCoral       float64 `json:"total_coral"`
	TotalAutoCoral   float64 `json:"total_auto_coral"`
	TotalTeleopCoral float64 `json:"total_teleop_coral"`
	TotalAlgae       float64 `json:"total_algae"`
	TotalAutoAlgae   float64 `json:"total_auto_algae"`
	TotalTeleopAlgae float64 `json:"total_teleop_algae"`

	ClimbSuccessRate     float64 `json:"climb_success_rate"`
	DeepClimbAttempts    int     `json:"deep_climb_attempts"`
	DeepClimbSuccessRate float64 `json:"deep_climb_success_rate"`
	DefenseRating        float64 `json:"defense_rating"`
}

// means are unrounded per-match averages, kept for normalization.
type means struct {
	autoCoral, teleopCoral [4]float64
	autoNet, autoProc      float64
	teleopNet, teleopProc  float64
	climbRate              float64
	defense                float64
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func computeMeans(t leaderboarddb.TeamTotals) means {
	n := t.Matches
	return means{
		autoCoral: [4]float64{
			ratio(t.AutoCoralLevel1, n), ratio(t.AutoCoralLevel2, n),
			ratio(t.AutoCoralLevel3, n), ratio(t.AutoCoralLevel4, n),
		},
		teleopCoral: [4]float64{
			ratio(t.TeleopCoralLevel1, n), ratio(t.TeleopCoralLevel2, n),
			ratio(t.TeleopCoralLevel3, n), ratio(t.TeleopCoralLevel4, n),
		},
		autoNet:    ratio(t.AutoAlgaeNet, n),
		autoProc:   ratio(t.AutoAlgaeProcessor, n),
		teleopNet:  ratio(t.TeleopAlgaeNet, n),
		teleopProc: ratio(t.TeleopAlgaeProcessor, n),
		climbRate:  ratio(t.ClimbSuccesses, n),
		defense:    ratio(t.DefenseTotal, n),
	}
}

func sum4(v [4]float64) float64 {
	return v[0] + v[1] + v[2] + v[3]
}

// statsFromTotals turns exact sums into display stats. A zero-match team yields zeros.
func statsFromTotals(t leaderboarddb.TeamTotals) TeamStats {
	m := computeMeans(t)
	autoCoral := sum4(m.autoCoral)
	teleopCoral := sum4(m.teleopCoral)
	autoAlgae := m.autoNet + m.autoProc
	teleopAlgae := m.teleopNet + m.teleopProc

	return TeamStats{
		TeamNumber:    t.TeamNumber,
		MatchesPlayed: t.Matches,
		AutoCoral: CoralLevels{
			Level1: round1(m.autoCoral[0]), Level2: round1(m.autoCoral[1]),
			Level3: round1(m.autoCoral[2]), Level4: round1(m.autoCoral[3]),
		},
		TeleopCoral: CoralLevels{
			Level1: round1(m.teleopCoral[0]), Level2: round1(m.teleopCoral[1]),
			Level3: round1(m.teleopCoral[2]), Level4: round1(m.teleopCoral[3]),
		},
		AutoAlgae:   AlgaeStats{Net: round1(m.autoNet), Processor: round1(m.autoProc)},
		TeleopAlgae: AlgaeStats{Net: round1(m.teleopNet), Processor: round1(m.teleopProc)},

		TotalCoral:       round1(autoCoral + teleopCoral),
		TotalAutoCoral:   round1(autoCoral),
		TotalTeleopCoral: round1(teleopCoral),
		TotalAlgae:       round1(autoAlgae + teleopAlgae),
		TotalAutoAlgae:   round1(autoAlgae),
		TotalTeleopAlgae: round1(teleopAlgae),

		ClimbSuccessRate:     round1(m.climbRate * 100),
		DeepClimbAttempts:    t.DeepAttempts,
		DeepClimbSuccessRate: round1(ratio(t.DeepSuccesses, t.DeepAttempts) * 100),
		DefenseRating:        round1(m.defense),
	}
}

func (s TeamStats) sortValue(key SortKey) float64 {
	switch key {
	case SortAutoCoral:
		return s.TotalAutoCoral
	case SortTeleopCoral:
		return s.TotalTeleopCoral
	case SortAlgae:
		return s.TotalAlgae
	case SortAutoAlgae:
		return s.TotalAutoAlgae
	case SortTeleopAlgae:
		return s.TotalTeleopAlgae
	case SortDeepClimb:
		return s.DeepClimbSuccessRate
	case SortDefense:
		return s.DefenseRating
	}
	return s.TotalCoral
}

// rank builds the ordered leaderboard: descending by the key's value, ties by
// ascending team number. deep_climb only lists teams that attempted a deep climb.
func rank(totals []leaderboarddb.TeamTotals, key SortKey) []TeamStats {
	out := make([]TeamStats, 0, len(totals))
	for _, t := range totals {
		if t.Matches == 0 {
			continue
		}
		if key == SortDeepClimb && t.DeepAttempts == 0 {
			continue
		}
		out = append(out, statsFromTotals(t))
	}

	slices.SortStableFunc(out, func(a, b TeamStats) int {
		if c := cmp.Compare(b.sortValue(key), a.sortValue(key)); c != 0 {
			return c
		}
		return cmp.Compare(a.TeamNumber, b.TeamNumber)
	})
	return out
}

// NormalizedStats are 0..1 scores for side-by-side comparison.
type NormalizedStats struct {
	AutoScoring   float64 `json:"auto_scoring"`
	TeleopScoring float64 `json:"teleop_scoring"`
	ClimbRating   float64 `json:"climb_rating"`
	DefenseRating float64 `json:"defense_rating"`
}

// scoringDivisor scales weighted phase points into the 0..1 range.
const scoringDivisor = 20

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func weightedPoints(coral [4]float64, net, proc float64) float64 {
	return coral[0] + coral[1]*2 + coral[2]*3 + coral[3]*4 + net*2 + proc*3
}

func normalize(t leaderboarddb.TeamTotals) NormalizedStats {
	if t.Matches == 0 {
		return NormalizedStats{}
	}
	m := computeMeans(t)
	return NormalizedStats{
		AutoScoring:   round2(clamp01(weightedPoints(m.autoCoral, m.autoNet, m.autoProc) / scoringDivisor)),
		TeleopScoring: round2(clamp01(weightedPoints(m.teleopCoral, m.teleopNet, m.teleopProc) / scoringDivisor)),
		ClimbRating:   round2(clamp01(m.climbRate)),
		DefenseRating: round2(clamp01(m.defense / 5)),
	}
}
