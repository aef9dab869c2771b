package assignmentservice

import "fmt"

// Reason identifies why an assignment operation was refused.
type Reason string

const (
	ReasonForbidden      Reason = "forbidden"
	ReasonInvalidTitle   Reason = "invalid_title"
	ReasonInvalidDueDate Reason = "invalid_due_date"
	ReasonNotFound       Reason = "not_found"
	ReasonNotAssigned    Reason = "not_assigned"
)

// Rejection is a business refusal. Its Message is safe to show to the caller.
type Rejection struct {
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

// IsValidation reports whether the rejection came from the request body.
func (r Rejection) IsValidation() bool {
	return r.Reason == ReasonInvalidTitle || r.Reason == ReasonInvalidDueDate
}

func reject(reason Reason, format string, args ...any) Rejection {
	return Rejection{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

var notFound = reject(ReasonNotFound, "Assignment not found")
