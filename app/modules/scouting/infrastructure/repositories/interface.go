package scoutingdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for scouting entry persistence.
type Repository interface {
	// WithMatchLock runs fn while holding an exclusive lock on (eventCode, matchNumber).
	// Writers for the same match are serialized until fn returns.
	WithMatchLock(ctx context.Context, db bun.IDB, eventCode string, matchNumber int, fn func(ctx context.Context, db bun.IDB) error) error

	// CountAlliance counts entries on one alliance of a match, ignoring excludeID.
	CountAlliance(ctx context.Context, db bun.IDB, eventCode string, matchNumber int, alliance string, excludeID uuid.UUID) (int, error)

	// ExistsForOrganization reports whether the organization already scouted the team in the match.
	ExistsForOrganization(ctx context.Context, db bun.IDB, eventCode string, matchNumber, teamNumber int, organization string, excludeID uuid.UUID) (bool, error)

	Insert(ctx context.Context, db bun.IDB, entry *Entry) error
	Update(ctx context.Context, db bun.IDB, entry *Entry) error
	Delete(ctx context.Context, db bun.IDB, id uuid.UUID) error
	GetByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*Entry, error)

	// ListByTeam returns the team's entries visible to viewer, newest match first.
	ListByTeam(ctx context.Context, db bun.IDB, teamNumber int, viewer Viewer) ([]Entry, error)

	CountByTeam(ctx context.Context, db bun.IDB, teamNumber int, viewer Viewer) (int, error)

	// ListAutoPaths returns the non-empty autonomous paths for a team visible to viewer.
	ListAutoPaths(ctx context.Context, db bun.IDB, teamNumber int, viewer Viewer) ([]AutoPath, error)
}
