package leaderboarddb

import scoutingdb "github.com/Black-And-White-Club/scout-bot/app/modules/scouting/infrastructure/repositories"

// TeamTotals holds exact per-team sums over scouting entries.
type TeamTotals struct {
	TeamNumber int `bun:"team_number"`
	Matches    int `bun:"matches"`

	AutoCoralLevel1      int `bun:"auto_coral_level1"`
	AutoCoralLevel2      int `bun:"auto_coral_level2"`
	AutoCoralLevel3      int `bun:"auto_coral_level3"`
	AutoCoralLevel4      int `bun:"auto_coral_level4"`
	AutoAlgaeNet         int `bun:"auto_algae_net"`
	AutoAlgaeProcessor   int `bun:"auto_algae_processor"`
	TeleopCoralLevel1    int `bun:"teleop_coral_level1"`
	TeleopCoralLevel2    int `bun:"teleop_coral_level2"`
	TeleopCoralLevel3    int `bun:"teleop_coral_level3"`
	TeleopCoralLevel4    int `bun:"teleop_coral_level4"`
	TeleopAlgaeNet       int `bun:"teleop_algae_net"`
	TeleopAlgaeProcessor int `bun:"teleop_algae_processor"`

	ClimbSuccesses int `bun:"climb_successes"`
	DeepAttempts   int `bun:"deep_attempts"`
	DeepSuccesses  int `bun:"deep_successes"`
	DefenseTotal   int `bun:"defense_total"`
}

// AllianceTotals sums one alliance of one match with auto and teleop combined.
type AllianceTotals struct {
	EventCode   string `bun:"event_code"`
	MatchNumber int    `bun:"match_number"`
	Alliance    string `bun:"alliance"`
	Entries     int    `bun:"entries"`

	CoralLevel1    int `bun:"coral_level1"`
	CoralLevel2    int `bun:"coral_level2"`
	CoralLevel3    int `bun:"coral_level3"`
	CoralLevel4    int `bun:"coral_level4"`
	AlgaeNet       int `bun:"algae_net"`
	AlgaeProcessor int `bun:"algae_processor"`
}

// MatchRow is one entry of a match with auto and teleop combined.
type MatchRow struct {
	EventCode   string `bun:"event_code"`
	MatchNumber int    `bun:"match_number"`
	Alliance    string `bun:"alliance"`
	TeamNumber  int    `bun:"team_number"`

	CoralLevel1    int `bun:"coral_level1"`
	CoralLevel2    int `bun:"coral_level2"`
	CoralLevel3    int `bun:"coral_level3"`
	CoralLevel4    int `bun:"coral_level4"`
	AlgaeNet       int `bun:"algae_net"`
	AlgaeProcessor int `bun:"algae_processor"`

	ClimbType    string `bun:"climb_type"`
	ClimbSuccess bool   `bun:"climb_success"`
}

// Filter narrows the entries that are summarized. Zero values match everything.
type Filter struct {
	EventCode   string
	TeamNumbers []int
	// Viewer, when set, keeps only entries the viewer may see.
	Viewer *scoutingdb.Viewer
}
