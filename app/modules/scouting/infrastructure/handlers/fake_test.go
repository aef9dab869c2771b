package scoutinghandlers

import (
	"context"

	authdomain "github.com/Black-And-White-Club/scout-bot/app/modules/auth/domain"
	scoutingservice "github.com/Black-And-White-Club/scout-bot/app/modules/scouting/application"
	scoutingdb "github.com/Black-And-White-Club/scout-bot/app/modules/scouting/infrastructure/repositories"
	"github.com/Black-And-White-Club/scout-bot/internal/results"
	"github.com/google/uuid"
)

// FakeService is a programmable fake for scoutingservice.Service.
type FakeService struct {
	SubmitFunc      func(ctx context.Context, input scoutingservice.EntryInput, scout authdomain.Scout) (scoutingservice.AdmissionResult, error)
	UpdateFunc      func(ctx context.Context, id uuid.UUID, input scoutingservice.EntryInput, scout authdomain.Scout) (scoutingservice.AdmissionResult, error)
	DeleteFunc      func(ctx context.Context, id uuid.UUID, scout authdomain.Scout) (scoutingservice.AdmissionResult, error)
	GetFunc         func(ctx context.Context, id uuid.UUID, scout authdomain.Scout) (results.OperationResult[*scoutingdb.Entry, scoutingservice.Rejection], error)
	ListByTeamFunc  func(ctx context.Context, teamNumber int, scout authdomain.Scout) ([]scoutingdb.Entry, error)
	HasTeamDataFunc func(ctx context.Context, teamNumber int, scout authdomain.Scout) (bool, error)
	AutoPathsFunc   func(ctx context.Context, teamNumber int, scout authdomain.Scout) ([]scoutingdb.AutoPath, error)
}

func (f *FakeService) Submit(ctx context.Context, input scoutingservice.EntryInput, scout authdomain.Scout) (scoutingservice.AdmissionResult, error) {
	if f.SubmitFunc != nil {
		return f.SubmitFunc(ctx, input, scout)
	}
	return results.SuccessResult[uuid.UUID, scoutingservice.Rejection](uuid.New()), nil
}

func (f *FakeService) Update(ctx context.Context, id uuid.UUID, input scoutingservice.EntryInput, scout authdomain.Scout) (scoutingservice.AdmissionResult, error) {
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, id, input, scout)
	}
	return results.SuccessResult[uuid.UUID, scoutingservice.Rejection](id), nil
}

func (f *FakeService) Delete(ctx context.Context, id uuid.UUID, scout authdomain.Scout) (scoutingservice.AdmissionResult, error) {
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, id, scout)
	}
	return results.SuccessResult[uuid.UUID, scoutingservice.Rejection](id), nil
}

func (f *FakeService) Get(ctx context.Context, id uuid.UUID, scout authdomain.Scout) (results.OperationResult[*scoutingdb.Entry, scoutingservice.Rejection], error) {
	if f.GetFunc != nil {
		return f.GetFunc(ctx, id, scout)
	}
	return results.FailureResult[*scoutingdb.Entry](scoutingservice.Rejection{Reason: scoutingservice.ReasonNotFound, Message: "Scouting entry not found"}), nil
}

func (f *FakeService) ListByTeam(ctx context.Context, teamNumber int, scout authdomain.Scout) ([]scoutingdb.Entry, error) {
	if f.ListByTeamFunc != nil {
		return f.ListByTeamFunc(ctx, teamNumber, scout)
	}
	return nil, nil
}

func (f *FakeService) HasTeamData(ctx context.Context, teamNumber int, scout authdomain.Scout) (bool, error) {
	if f.HasTeamDataFunc != nil {
		return f.HasTeamDataFunc(ctx, teamNumber, scout)
	}
	return false, nil
}

func (f *FakeService) AutoPaths(ctx context.Context, teamNumber int, scout authdomain.Scout) ([]scoutingdb.AutoPath, error) {
	if f.AutoPathsFunc != nil {
		return f.AutoPathsFunc(ctx, teamNumber, scout)
	}
	return nil, nil
}

var _ scoutingservice.Service = (*FakeService)(nil)
