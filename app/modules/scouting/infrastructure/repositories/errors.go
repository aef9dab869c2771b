package scoutingdb

import "errors"

var (
	// ErrNotFound indicates the requested entry does not exist.
	ErrNotFound = errors.New("scouting entry not found")

	// ErrDuplicate is returned when the organization unique index rejects a write.
	ErrDuplicate = errors.New("scouting entry already exists for organization")
)
