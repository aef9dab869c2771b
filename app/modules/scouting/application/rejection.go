package scoutingservice

import "fmt"

// Reason identifies why an entry was not accepted.
type Reason string

const (
	ReasonInvalidTeamNumber  Reason = "invalid_team_number"
	ReasonInvalidMatchNumber Reason = "invalid_match_number"
	ReasonInvalidEventCode   Reason = "invalid_event_code"
	ReasonInvalidAlliance    Reason = "invalid_alliance"
	ReasonInvalidScore       Reason = "invalid_score"
	ReasonInvalidClimb       Reason = "invalid_climb"
	ReasonInvalidDefense     Reason = "invalid_defense_rating"
	ReasonDuplicateByOrg     Reason = "duplicate_by_organization"
	ReasonAllianceFull       Reason = "alliance_full"
	ReasonNotFound           Reason = "not_found"
	ReasonNotOwner           Reason = "not_owner"
)

// Rejection is a business refusal. Its Message is safe to show to the scout.
type Rejection struct {
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

// IsValidation reports whether the rejection came from input validation rather than
// from an invariant over stored entries.
func (r Rejection) IsValidation() bool {
	switch r.Reason {
	case ReasonInvalidTeamNumber, ReasonInvalidMatchNumber, ReasonInvalidEventCode,
		ReasonInvalidAlliance, ReasonInvalidScore, ReasonInvalidClimb, ReasonInvalidDefense:
		return true
	}
	return false
}

func reject(reason Reason, format string, args ...any) Rejection {
	return Rejection{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

func duplicateRejection(team, match int) Rejection {
	return reject(ReasonDuplicateByOrg, "Team %d has already been scouted by your team in match %d", team, match)
}

func allianceFullRejection(alliance string) Rejection {
	return reject(ReasonAllianceFull, "Cannot add more teams to %s alliance (maximum 3)", alliance)
}
