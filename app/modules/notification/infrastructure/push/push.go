// Package push delivers notifications to browser push subscriptions.
package push

import (
	"context"
	"errors"
	"time"

	notificationdb "github.com/Black-And-White-Club/scout-bot/app/modules/notification/infrastructure/repositories"
	"github.com/google/uuid"
)

// ErrTargetGone means the push service no longer knows the subscription. The row
// holding it should be deleted.
var ErrTargetGone = errors.New("push target gone")

const logoPath = "/static/images/logo.png"

// Notification is the content shown to the user.
type Notification struct {
	Title        string
	Body         string
	URL          string
	AssignmentID *uuid.UUID
	Data         map[string]any
}

// Sender delivers one notification to one push target.
type Sender interface {
	Send(ctx context.Context, target notificationdb.PushTarget, n Notification) error
}

// Action is a button rendered by the service worker.
type Action struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

// Payload is the JSON document the service worker receives.
type Payload struct {
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	URL       string         `json:"url"`
	Icon      string         `json:"icon"`
	Badge     string         `json:"badge"`
	Image     string         `json:"image"`
	Data      map[string]any `json:"data"`
	Actions   []Action       `json:"actions"`
	Timestamp int64          `json:"timestamp"`
}

// BuildPayload renders n for the service worker. The data map always carries the
// target url, and the assignment id when there is one.
func BuildPayload(n Notification, now time.Time) Payload {
	data := make(map[string]any, len(n.Data)+2)
	for k, v := range n.Data {
		data[k] = v
	}
	data["url"] = n.URL
	if n.AssignmentID != nil {
		data["assignment_id"] = n.AssignmentID.String()
	}

	return Payload{
		Title: n.Title,
		Body:  n.Body,
		URL:   n.URL,
		Icon:  logoPath,
		Badge: logoPath,
		Image: logoPath,
		Data:  data,
		Actions: []Action{
			{Action: "view", Title: "View"},
			{Action: "dismiss", Title: "Dismiss"},
		},
		Timestamp: now.UnixMilli(),
	}
}
