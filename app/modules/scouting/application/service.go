package scoutingservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	authdomain "github.com/Black-And-White-Club/scout-bot/app/modules/auth/domain"
	scoutingdb "github.com/Black-And-White-Club/scout-bot/app/modules/scouting/infrastructure/repositories"
	"github.com/Black-And-White-Club/scout-bot/internal/observability/metrics"
	"github.com/Black-And-White-Club/scout-bot/internal/operation"
	"github.com/Black-And-White-Club/scout-bot/internal/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// ScoutingService implements the Service interface.
type ScoutingService struct {
	repo   scoutingdb.Repository
	runner *operation.Runner
	now    func() time.Time
}

// NewScoutingService creates a new ScoutingService.
func NewScoutingService(
	repo scoutingdb.Repository,
	logger *slog.Logger,
	m metrics.ServiceMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *ScoutingService {
	return &ScoutingService{
		repo:   repo,
		runner: operation.NewRunner("ScoutingService", logger, m, tracer, db),
		now:    time.Now,
	}
}

var _ Service = (*ScoutingService)(nil)

func entryKey(in EntryInput) string {
	return in.EventCode + "/" + strconv.Itoa(in.MatchNumber) + "/" + strconv.Itoa(in.TeamNumber)
}

// Submit admits a new entry.
func (s *ScoutingService) Submit(ctx context.Context, input EntryInput, scout authdomain.Scout) (AdmissionResult, error) {
	return operation.Run(ctx, s.runner, "Submit", entryKey(input), func(ctx context.Context, db bun.IDB) (AdmissionResult, error) {
		return s.submitLogic(ctx, db, input, scout)
	})
}

func (s *ScoutingService) submitLogic(ctx context.Context, db bun.IDB, input EntryInput, scout authdomain.Scout) (AdmissionResult, error) {
	if rej := input.normalize(); rej != nil {
		return results.FailureResult[uuid.UUID](*rej), nil
	}

	entry := &scoutingdb.Entry{
		ID:                  uuid.New(),
		ScouterID:           scout.ID,
		ScouterOrganization: scout.Organization(),
		CreatedAt:           s.now().UTC(),
	}
	input.apply(entry)

	var result AdmissionResult
	err := s.repo.WithMatchLock(ctx, db, entry.EventCode, entry.MatchNumber, func(ctx context.Context, db bun.IDB) error {
		rej, err := s.checkSlot(ctx, db, entry, uuid.Nil, true)
		if err != nil {
			return err
		}
		if rej != nil {
			result = results.FailureResult[uuid.UUID](*rej)
			return nil
		}

		if err := s.repo.Insert(ctx, db, entry); err != nil {
			if errors.Is(err, scoutingdb.ErrDuplicate) {
				result = results.FailureResult[uuid.UUID](duplicateRejection(entry.TeamNumber, entry.MatchNumber))
				return nil
			}
			return err
		}
		result = results.SuccessResult[uuid.UUID, Rejection](entry.ID)
		return nil
	})
	if err != nil {
		return AdmissionResult{}, fmt.Errorf("failed to submit entry: %w", err)
	}
	return result, nil
}

// checkSlot enforces the per-organization uniqueness and the alliance capacity for
// entry's match, ignoring excludeID. Capacity is only checked when checkCapacity is set.
func (s *ScoutingService) checkSlot(ctx context.Context, db bun.IDB, entry *scoutingdb.Entry, excludeID uuid.UUID, checkCapacity bool) (*Rejection, error) {
	dup, err := s.repo.ExistsForOrganization(ctx, db, entry.EventCode, entry.MatchNumber, entry.TeamNumber, entry.ScouterOrganization, excludeID)
	if err != nil {
		return nil, err
	}
	if dup {
		rej := duplicateRejection(entry.TeamNumber, entry.MatchNumber)
		return &rej, nil
	}

	if !checkCapacity {
		return nil, nil
	}
	count, err := s.repo.CountAlliance(ctx, db, entry.EventCode, entry.MatchNumber, entry.Alliance, excludeID)
	if err != nil {
		return nil, err
	}
	if count >= scoutingdb.MaxAllianceEntries {
		rej := allianceFullRejection(entry.Alliance)
		return &rej, nil
	}
	return nil, nil
}

// Update rewrites an owned entry.
func (s *ScoutingService) Update(ctx context.Context, id uuid.UUID, input EntryInput, scout authdomain.Scout) (AdmissionResult, error) {
	return operation.Run(ctx, s.runner, "Update", id.String(), func(ctx context.Context, db bun.IDB) (AdmissionResult, error) {
		return s.updateLogic(ctx, db, id, input, scout)
	})
}

func (s *ScoutingService) updateLogic(ctx context.Context, db bun.IDB, id uuid.UUID, input EntryInput, scout authdomain.Scout) (AdmissionResult, error) {
	existing, rej, err := s.loadOwned(ctx, db, id, scout)
	if err != nil || rej != nil {
		return rejectedOrFailed(rej, err)
	}
	if rej := input.normalize(); rej != nil {
		return results.FailureResult[uuid.UUID](*rej), nil
	}

	updated := *existing
	input.apply(&updated)

	// Moving to another alliance or match takes a new slot; staying put does not.
	slotChanged := updated.Alliance != existing.Alliance ||
		updated.EventCode != existing.EventCode ||
		updated.MatchNumber != existing.MatchNumber

	var result AdmissionResult
	err = s.repo.WithMatchLock(ctx, db, updated.EventCode, updated.MatchNumber, func(ctx context.Context, db bun.IDB) error {
		rej, err := s.checkSlot(ctx, db, &updated, id, slotChanged)
		if err != nil {
			return err
		}
		if rej != nil {
			result = results.FailureResult[uuid.UUID](*rej)
			return nil
		}

		if err := s.repo.Update(ctx, db, &updated); err != nil {
			switch {
			case errors.Is(err, scoutingdb.ErrDuplicate):
				result = results.FailureResult[uuid.UUID](duplicateRejection(updated.TeamNumber, updated.MatchNumber))
				return nil
			case errors.Is(err, scoutingdb.ErrNotFound):
				result = results.FailureResult[uuid.UUID](reject(ReasonNotFound, "Scouting entry not found"))
				return nil
			}
			return err
		}
		result = results.SuccessResult[uuid.UUID, Rejection](id)
		return nil
	})
	if err != nil {
		return AdmissionResult{}, fmt.Errorf("failed to update entry: %w", err)
	}
	return result, nil
}

// Delete removes an owned entry.
func (s *ScoutingService) Delete(ctx context.Context, id uuid.UUID, scout authdomain.Scout) (AdmissionResult, error) {
	return operation.Run(ctx, s.runner, "Delete", id.String(), func(ctx context.Context, db bun.IDB) (AdmissionResult, error) {
		_, rej, err := s.loadOwned(ctx, db, id, scout)
		if err != nil || rej != nil {
			return rejectedOrFailed(rej, err)
		}

		if err := s.repo.Delete(ctx, db, id); err != nil {
			if errors.Is(err, scoutingdb.ErrNotFound) {
				return results.FailureResult[uuid.UUID](reject(ReasonNotFound, "Scouting entry not found")), nil
			}
			return AdmissionResult{}, fmt.Errorf("failed to delete entry: %w", err)
		}
		return results.SuccessResult[uuid.UUID, Rejection](id), nil
	})
}

func (s *ScoutingService) loadOwned(ctx context.Context, db bun.IDB, id uuid.UUID, scout authdomain.Scout) (*scoutingdb.Entry, *Rejection, error) {
	entry, err := s.repo.GetByID(ctx, db, id)
	if err != nil {
		if errors.Is(err, scoutingdb.ErrNotFound) {
			rej := reject(ReasonNotFound, "Scouting entry not found")
			return nil, &rej, nil
		}
		return nil, nil, fmt.Errorf("failed to load entry: %w", err)
	}
	if entry.ScouterID != scout.ID {
		rej := reject(ReasonNotOwner, "You can only change entries you submitted")
		return nil, &rej, nil
	}
	return entry, nil, nil
}

func rejectedOrFailed(rej *Rejection, err error) (AdmissionResult, error) {
	if err != nil {
		return AdmissionResult{}, err
	}
	return results.FailureResult[uuid.UUID](*rej), nil
}

// viewerOf scopes reads to the scout's organization and the scout's own entries.
func viewerOf(scout authdomain.Scout) scoutingdb.Viewer {
	return scoutingdb.Viewer{Organization: scout.Organization(), ScouterID: scout.ID}
}

// Get returns one entry. Entries the scout may not see are reported as not found.
func (s *ScoutingService) Get(ctx context.Context, id uuid.UUID, scout authdomain.Scout) (results.OperationResult[*scoutingdb.Entry, Rejection], error) {
	return operation.Read(ctx, s.runner, "Get", id.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*scoutingdb.Entry, Rejection], error) {
		entry, err := s.repo.GetByID(ctx, db, id)
		if err != nil && !errors.Is(err, scoutingdb.ErrNotFound) {
			return results.OperationResult[*scoutingdb.Entry, Rejection]{}, err
		}
		if err != nil || !viewerOf(scout).CanSee(entry) {
			return results.FailureResult[*scoutingdb.Entry](reject(ReasonNotFound, "Scouting entry not found")), nil
		}
		return results.SuccessResult[*scoutingdb.Entry, Rejection](entry), nil
	})
}

// ListByTeam returns the team's entries visible to scout.
func (s *ScoutingService) ListByTeam(ctx context.Context, teamNumber int, scout authdomain.Scout) ([]scoutingdb.Entry, error) {
	result, err := operation.Read(ctx, s.runner, "ListByTeam", strconv.Itoa(teamNumber), func(ctx context.Context, db bun.IDB) (results.OperationResult[[]scoutingdb.Entry, Rejection], error) {
		entries, err := s.repo.ListByTeam(ctx, db, teamNumber, viewerOf(scout))
		if err != nil {
			return results.OperationResult[[]scoutingdb.Entry, Rejection]{}, err
		}
		return results.SuccessResult[[]scoutingdb.Entry, Rejection](entries), nil
	})
	if err != nil {
		return nil, err
	}
	return *result.Success, nil
}

// HasTeamData reports whether scout can see any entry for a team.
func (s *ScoutingService) HasTeamData(ctx context.Context, teamNumber int, scout authdomain.Scout) (bool, error) {
	result, err := operation.Read(ctx, s.runner, "HasTeamData", strconv.Itoa(teamNumber), func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, Rejection], error) {
		count, err := s.repo.CountByTeam(ctx, db, teamNumber, viewerOf(scout))
		if err != nil {
			return results.OperationResult[bool, Rejection]{}, err
		}
		return results.SuccessResult[bool, Rejection](count > 0), nil
	})
	if err != nil {
		return false, err
	}
	return *result.Success, nil
}

// AutoPaths returns the recorded autonomous routes for a team visible to scout.
func (s *ScoutingService) AutoPaths(ctx context.Context, teamNumber int, scout authdomain.Scout) ([]scoutingdb.AutoPath, error) {
	result, err := operation.Read(ctx, s.runner, "AutoPaths", strconv.Itoa(teamNumber), func(ctx context.Context, db bun.IDB) (results.OperationResult[[]scoutingdb.AutoPath, Rejection], error) {
		paths, err := s.repo.ListAutoPaths(ctx, db, teamNumber, viewerOf(scout))
		if err != nil {
			return results.OperationResult[[]scoutingdb.AutoPath, Rejection]{}, err
		}
		return results.SuccessResult[[]scoutingdb.AutoPath, Rejection](paths), nil
	})
	if err != nil {
		return nil, err
	}
	return *result.Success, nil
}
