// Package events defines the payloads published on the event bus.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Black-And-White-Club/scout-bot/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"
)

// AssignmentCreatedV1 is published after an assignment has been committed.
const AssignmentCreatedV1 = "assignment.created.v1"

// AssignmentCreatedPayloadV1 carries what the notifier needs to alert assignees.
type AssignmentCreatedPayloadV1 struct {
	AssignmentID uuid.UUID  `json:"assignment_id"`
	TeamNumber   int        `json:"team_number"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	AssignedTo   []string   `json:"assigned_to"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	CreatedBy    string     `json:"created_by"`
}

// NewMessage encodes payload as a Watermill message carrying ctx's correlation ID.
func NewMessage(ctx context.Context, payload any) (*message.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("events.NewMessage: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), body)
	correlationID := attr.CorrelationID(ctx)
	if correlationID == "" {
		correlationID = watermill.NewUUID()
	}
	middleware.SetCorrelationID(correlationID, msg)
	return msg, nil
}

// Decode unmarshals msg's payload into T.
func Decode[T any](msg *message.Message) (*T, error) {
	var payload T
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, fmt.Errorf("events.Decode: %w", err)
	}
	return &payload, nil
}
