package scoutingdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Alliance values.
const (
	AllianceRed  = "red"
	AllianceBlue = "blue"
)

// Climb types.
const (
	ClimbNone    = "none"
	ClimbPark    = "park"
	ClimbShallow = "shallow"
	ClimbDeep    = "deep"
)

// MaxAllianceEntries is the number of teams on one alliance in a match.
const MaxAllianceEntries = 3

// Entry is one scout's observations of one team in one match.
type Entry struct {
	bun.BaseModel `bun:"table:scouting_entries,alias:se"`

	ID          uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	EventCode   string    `bun:"event_code,notnull" json:"event_code"`
	MatchNumber int       `bun:"match_number,notnull" json:"match_number"`
	TeamNumber  int       `bun:"team_number,notnull" json:"team_number"`
	Alliance    string    `bun:"alliance,notnull" json:"alliance"`

	AutoCoralLevel1      int `bun:"auto_coral_level1,notnull,default:0" json:"auto_coral_level1"`
	AutoCoralLevel2      int `bun:"auto_coral_level2,notnull,default:0" json:"auto_coral_level2"`
	AutoCoralLevel3      int `bun:"auto_coral_level3,notnull,default:0" json:"auto_coral_level3"`
	AutoCoralLevel4      int `bun:"auto_coral_level4,notnull,default:0" json:"auto_coral_level4"`
	AutoAlgaeNet         int `bun:"auto_algae_net,notnull,default:0" json:"auto_algae_net"`
	AutoAlgaeProcessor   int `bun:"auto_algae_processor,notnull,default:0" json:"auto_algae_processor"`
	TeleopCoralLevel1    int `bun:"teleop_coral_level1,notnull,default:0" json:"teleop_coral_level1"`
	TeleopCoralLevel2    int `bun:"teleop_coral_level2,notnull,default:0" json:"teleop_coral_level2"`
	TeleopCoralLevel3    int `bun:"teleop_coral_level3,notnull,default:0" json:"teleop_coral_level3"`
	TeleopCoralLevel4    int `bun:"teleop_coral_level4,notnull,default:0" json:"teleop_coral_level4"`
	TeleopAlgaeNet       int `bun:"teleop_algae_net,notnull,default:0" json:"teleop_algae_net"`
	TeleopAlgaeProcessor int `bun:"teleop_algae_processor,notnull,default:0" json:"teleop_algae_processor"`

	ClimbType     string `bun:"climb_type,notnull,default:'none'" json:"climb_type"`
	ClimbSuccess  bool   `bun:"climb_success,notnull,default:false" json:"climb_success"`
	DefenseRating int    `bun:"defense_rating,notnull,default:1" json:"defense_rating"`
	DefenseNotes  string `bun:"defense_notes,notnull,default:''" json:"defense_notes"`
	AutoPath      string `bun:"auto_path,notnull,default:''" json:"auto_path"`
	AutoNotes     string `bun:"auto_notes,notnull,default:''" json:"auto_notes"`
	Notes         string `bun:"notes,notnull,default:''" json:"notes"`
	MatchVideoURL string `bun:"match_video_url,notnull,default:''" json:"match_video_url"`

	ScouterID           string `bun:"scouter_id,notnull" json:"scouter_id"`
	ScouterOrganization string `bun:"scouter_organization,notnull" json:"scouter_organization"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// AutoPath is the drawn autonomous route recorded for one match.
type AutoPath struct {
	EntryID     uuid.UUID `bun:"id" json:"id"`
	EventCode   string    `bun:"event_code" json:"event_code"`
	MatchNumber int       `bun:"match_number" json:"match_number"`
	Path        string    `bun:"auto_path" json:"auto_path"`
	Notes       string    `bun:"auto_notes" json:"auto_notes"`
}

// Viewer scopes reads to what one scout may see: entries recorded by the scout's
// organization plus the scout's own entries.
type Viewer struct {
	Organization string
	ScouterID    string
}

// CanSee reports whether e is visible to v.
func (v Viewer) CanSee(e *Entry) bool {
	return e.ScouterOrganization == v.Organization || e.ScouterID == v.ScouterID
}

// Apply restricts q, a select over scouting_entries, to entries visible to v.
func (v Viewer) Apply(q *bun.SelectQuery) *bun.SelectQuery {
	return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("se.scouter_organization = ?", v.Organization).
			WhereOr("se.scouter_id = ?", v.ScouterID)
	})
}
