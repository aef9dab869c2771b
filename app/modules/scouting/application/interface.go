package scoutingservice

import (
	"context"

	authdomain "github.com/Black-And-White-Club/scout-bot/app/modules/auth/domain"
	scoutingdb "github.com/Black-And-White-Club/scout-bot/app/modules/scouting/infrastructure/repositories"
	"github.com/Black-And-White-Club/scout-bot/internal/results"
	"github.com/google/uuid"
)

// AdmissionResult is Ok(entry id) or Rejected(reason). Infrastructure failures are
// returned as the accompanying error.
type AdmissionResult = results.OperationResult[uuid.UUID, Rejection]

// Service defines the scouting admission and lookup operations.
type Service interface {
	// Submit admits a new entry owned by scout.
	Submit(ctx context.Context, input EntryInput, scout authdomain.Scout) (AdmissionResult, error)

	// Update rewrites an entry owned by scout, re-checking the match invariants.
	Update(ctx context.Context, id uuid.UUID, input EntryInput, scout authdomain.Scout) (AdmissionResult, error)

	// Delete removes an entry owned by scout.
	Delete(ctx context.Context, id uuid.UUID, scout authdomain.Scout) (AdmissionResult, error)

	// Reads only return entries of the scout's organization and the scout's own.
	Get(ctx context.Context, id uuid.UUID, scout authdomain.Scout) (results.OperationResult[*scoutingdb.Entry, Rejection], error)
	ListByTeam(ctx context.Context, teamNumber int, scout authdomain.Scout) ([]scoutingdb.Entry, error)
	HasTeamData(ctx context.Context, teamNumber int, scout authdomain.Scout) (bool, error)
	AutoPaths(ctx context.Context, teamNumber int, scout authdomain.Scout) ([]scoutingdb.AutoPath, error)
}
