package notificationdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DefaultReminderMinutes is the reminder lead time when a subscriber gives none.
const DefaultReminderMinutes = 1440

// Status is the delivery state of a subscription row.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusError   Status = "error"
)

// PushKeys are the browser-generated encryption keys of a push subscription.
type PushKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// PushTarget is the PushSubscription object a browser hands out. It is stored as
// received and only interpreted by the push sender.
type PushTarget struct {
	Endpoint       string   `json:"endpoint"`
	ExpirationTime *int64   `json:"expirationTime,omitempty"`
	Keys           PushKeys `json:"keys"`
}

// IsEmpty reports whether the target cannot be delivered to.
func (t PushTarget) IsEmpty() bool {
	return t.Endpoint == ""
}

// Subscription is either a general team subscription (AssignmentID nil) or a
// reminder scheduled for one assignment.
type Subscription struct {
	bun.BaseModel `bun:"table:push_subscriptions,alias:ps"`

	ID              uuid.UUID      `bun:"id,pk,type:uuid" json:"id"`
	UserID          string         `bun:"user_id,notnull" json:"user_id"`
	TeamNumber      int            `bun:"team_number,notnull" json:"team_number"`
	Target          PushTarget     `bun:"subscription,type:jsonb,notnull" json:"subscription"`
	AssignmentID    *uuid.UUID     `bun:"assignment_id,type:uuid,nullzero" json:"assignment_id,omitempty"`
	ReminderMinutes int            `bun:"reminder_minutes,notnull,default:1440" json:"reminder_minutes"`
	ScheduledTime   *time.Time     `bun:"scheduled_time,nullzero" json:"scheduled_time,omitempty"`
	Sent            bool           `bun:"sent,notnull,default:false" json:"sent"`
	SentAt          *time.Time     `bun:"sent_at,nullzero" json:"sent_at,omitempty"`
	Status          Status         `bun:"status,notnull,default:'pending'" json:"status"`
	ErrorMessage    string         `bun:"error_message,notnull,default:''" json:"error_message,omitempty"`
	Title           string         `bun:"title,notnull,default:''" json:"title"`
	Body            string         `bun:"body,notnull,default:''" json:"body"`
	URL             string         `bun:"url,notnull,default:''" json:"url"`
	Data            map[string]any `bun:"data,type:jsonb" json:"data,omitempty"`
	CreatedAt       time.Time      `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time      `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// IsGeneral reports whether the row is a team-wide subscription.
func (s *Subscription) IsGeneral() bool {
	return s.AssignmentID == nil
}
