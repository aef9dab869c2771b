package assignmentdb

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Status is the lifecycle state of an assignment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Assignment is a task an admin hands to members of their team.
type Assignment struct {
	bun.BaseModel `bun:"table:assignments,alias:a"`

	ID          uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	TeamNumber  int        `bun:"team_number,notnull" json:"team_number"`
	Title       string     `bun:"title,notnull" json:"title"`
	Description string     `bun:"description,notnull,default:''" json:"description"`
	CreatedBy   string     `bun:"created_by,notnull" json:"created_by"`
	AssignedTo  []string   `bun:"assigned_to,array,type:text[],notnull" json:"assigned_to"`
	Status      Status     `bun:"status,notnull,default:'pending'" json:"status"`
	DueDate     *time.Time `bun:"due_date,nullzero" json:"due_date,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	CompletedAt *time.Time `bun:"completed_at,nullzero" json:"completed_at,omitempty"`
}

// IsAssigned reports whether userID is one of the assignees.
func (a *Assignment) IsAssigned(userID string) bool {
	return slices.Contains(a.AssignedTo, userID)
}
