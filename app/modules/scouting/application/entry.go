package scoutingservice

import (
	"strings"

	scoutingdb "github.com/Black-And-White-Club/scout-bot/app/modules/scouting/infrastructure/repositories"
)

// PhaseScores are the scoring counts for one phase of a match.
type PhaseScores struct {
	CoralLevel1    int `json:"coral_level1"`
	CoralLevel2    int `json:"coral_level2"`
	CoralLevel3    int `json:"coral_level3"`
	CoralLevel4    int `json:"coral_level4"`
	AlgaeNet       int `json:"algae_net"`
	AlgaeProcessor int `json:"algae_processor"`
}

func (p PhaseScores) hasNegative() bool {
	return p.CoralLevel1 < 0 || p.CoralLevel2 < 0 || p.CoralLevel3 < 0 || p.CoralLevel4 < 0 ||
		p.AlgaeNet < 0 || p.AlgaeProcessor < 0
}

// EntryInput is what a scout submits for one team in one match.
type EntryInput struct {
	EventCode   string      `json:"event_code"`
	MatchNumber int         `json:"match_number"`
	TeamNumber  int         `json:"team_number"`
	Alliance    string      `json:"alliance"`
	Auto        PhaseScores `json:"auto"`
	Teleop      PhaseScores `json:"teleop"`

	ClimbType     string `json:"climb_type"`
	ClimbSuccess  bool   `json:"climb_success"`
	DefenseRating int    `json:"defense_rating"`
	DefenseNotes  string `json:"defense_notes"`
	AutoPath      string `json:"auto_path"`
	AutoNotes     string `json:"auto_notes"`
	Notes         string `json:"notes"`
	MatchVideoURL string `json:"match_video_url"`
}

// normalize trims and lowercases enumerations and fills defaults, then validates.
func (in *EntryInput) normalize() *Rejection {
	in.EventCode = strings.TrimSpace(in.EventCode)
	in.Alliance = strings.ToLower(strings.TrimSpace(in.Alliance))
	in.ClimbType = strings.ToLower(strings.TrimSpace(in.ClimbType))
	if in.ClimbType == "" {
		in.ClimbType = scoutingdb.ClimbNone
	}
	if in.DefenseRating == 0 {
		in.DefenseRating = 1
	}

	var rej Rejection
	switch {
	case in.TeamNumber <= 0:
		rej = reject(ReasonInvalidTeamNumber, "Invalid team number")
	case in.MatchNumber <= 0:
		rej = reject(ReasonInvalidMatchNumber, "Invalid match number")
	case in.EventCode == "":
		rej = reject(ReasonInvalidEventCode, "Event code is required")
	case in.Alliance != scoutingdb.AllianceRed && in.Alliance != scoutingdb.AllianceBlue:
		rej = reject(ReasonInvalidAlliance, "Alliance must be red or blue")
	case in.Auto.hasNegative() || in.Teleop.hasNegative():
		rej = reject(ReasonInvalidScore, "Scores cannot be negative")
	case !validClimb(in.ClimbType):
		rej = reject(ReasonInvalidClimb, "Unknown climb type %q", in.ClimbType)
	case in.DefenseRating < 1 || in.DefenseRating > 5:
		rej = reject(ReasonInvalidDefense, "Defense rating must be between 1 and 5")
	default:
		if in.ClimbType == scoutingdb.ClimbNone {
			in.ClimbSuccess = false
		}
		return nil
	}
	return &rej
}

func validClimb(c string) bool {
	switch c {
	case scoutingdb.ClimbNone, scoutingdb.ClimbPark, scoutingdb.ClimbShallow, scoutingdb.ClimbDeep:
		return true
	}
	return false
}

// apply copies the input onto entry, leaving identity and ownership untouched.
func (in EntryInput) apply(entry *scoutingdb.Entry) {
	entry.EventCode = in.EventCode
	entry.MatchNumber = in.MatchNumber
	entry.TeamNumber = in.TeamNumber
	entry.Alliance = in.Alliance

	entry.AutoCoralLevel1 = in.Auto.CoralLevel1
	entry.AutoCoralLevel2 = in.Auto.CoralLevel2
	entry.AutoCoralLevel3 = in.Auto.CoralLevel3
	entry.AutoCoralLevel4 = in.Auto.CoralLevel4
	entry.AutoAlgaeNet = in.Auto.AlgaeNet
	entry.AutoAlgaeProcessor = in.Auto.AlgaeProcessor
	entry.TeleopCoralLevel1 = in.Teleop.CoralLevel1
	entry.TeleopCoralLevel2 = in.Teleop.CoralLevel2
	entry.TeleopCoralLevel3 = in.Teleop.CoralLevel3
	entry.TeleopCoralLevel4 = in.Teleop.CoralLevel4
	entry.TeleopAlgaeNet = in.Teleop.AlgaeNet
	entry.TeleopAlgaeProcessor = in.Teleop.AlgaeProcessor

	entry.ClimbType = in.ClimbType
	entry.ClimbSuccess = in.ClimbSuccess
	entry.DefenseRating = in.DefenseRating
	entry.DefenseNotes = in.DefenseNotes
	entry.AutoPath = in.AutoPath
	entry.AutoNotes = in.AutoNotes
	entry.Notes = in.Notes
	entry.MatchVideoURL = in.MatchVideoURL
}
