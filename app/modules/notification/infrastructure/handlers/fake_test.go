package notificationhandlers

import (
	"context"

	"github.com/Black-And-White-Club/scout-bot/app/events"
	authdomain "github.com/Black-And-White-Club/scout-bot/app/modules/auth/domain"
	notificationservice "github.com/Black-And-White-Club/scout-bot/app/modules/notification/application"
)

type FakeService struct {
	SubscribeFunc   func(ctx context.Context, scout authdomain.Scout, req notificationservice.SubscribeRequest) (notificationservice.SubscribeResult, error)
	UnsubscribeFunc func(ctx context.Context, scout authdomain.Scout, req notificationservice.UnsubscribeRequest) (notificationservice.UnsubscribeResult, error)
	PublicKey       string
}

func (f *FakeService) Subscribe(ctx context.Context, scout authdomain.Scout, req notificationservice.SubscribeRequest) (notificationservice.SubscribeResult, error) {
	return f.SubscribeFunc(ctx, scout, req)
}

func (f *FakeService) Unsubscribe(ctx context.Context, scout authdomain.Scout, req notificationservice.UnsubscribeRequest) (notificationservice.UnsubscribeResult, error) {
	return f.UnsubscribeFunc(ctx, scout, req)
}

func (f *FakeService) NotifyAssigned(context.Context, events.AssignmentCreatedPayloadV1) (notificationservice.DeliveryReport, error) {
	return notificationservice.DeliveryReport{}, nil
}

func (f *FakeService) VAPIDPublicKey() string {
	return f.PublicKey
}

var _ notificationservice.Service = (*FakeService)(nil)
