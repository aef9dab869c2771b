package assignmenthandlers

import (
	"context"

	assignmentservice "github.com/Black-And-White-Club/scout-bot/app/modules/assignment/application"
	assignmentdb "github.com/Black-And-White-Club/scout-bot/app/modules/assignment/infrastructure/repositories"
	authdomain "github.com/Black-And-White-Club/scout-bot/app/modules/auth/domain"
	"github.com/google/uuid"
)

type FakeService struct {
	CreateFunc      func(ctx context.Context, input assignmentservice.CreateInput, admin authdomain.Scout) (assignmentservice.AssignmentResult, error)
	CompleteFunc    func(ctx context.Context, id uuid.UUID, scout authdomain.Scout) (assignmentservice.AssignmentResult, error)
	DeleteFunc      func(ctx context.Context, id uuid.UUID, admin authdomain.Scout) (assignmentservice.AssignmentResult, error)
	ListForTeamFunc func(ctx context.Context, teamNumber int) ([]assignmentdb.Assignment, error)
}

func (f *FakeService) Create(ctx context.Context, input assignmentservice.CreateInput, admin authdomain.Scout) (assignmentservice.AssignmentResult, error) {
	return f.CreateFunc(ctx, input, admin)
}

func (f *FakeService) Complete(ctx context.Context, id uuid.UUID, scout authdomain.Scout) (assignmentservice.AssignmentResult, error) {
	return f.CompleteFunc(ctx, id, scout)
}

func (f *FakeService) Delete(ctx context.Context, id uuid.UUID, admin authdomain.Scout) (assignmentservice.AssignmentResult, error) {
	return f.DeleteFunc(ctx, id, admin)
}

func (f *FakeService) ListForTeam(ctx context.Context, teamNumber int) ([]assignmentdb.Assignment, error) {
	if f.ListForTeamFunc != nil {
		return f.ListForTeamFunc(ctx, teamNumber)
	}
	return nil, nil
}

var _ assignmentservice.Service = (*FakeService)(nil)
