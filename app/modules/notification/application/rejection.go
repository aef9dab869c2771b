package notificationservice

import "fmt"

// Reason identifies why a subscription operation was refused.
type Reason string

const (
	ReasonNotInTeam           Reason = "not_in_team"
	ReasonInvalidSubscription Reason = "invalid_subscription"
	ReasonInvalidReminder     Reason = "invalid_reminder"
	ReasonNotFound            Reason = "not_found"
	ReasonNotAssigned         Reason = "not_assigned"
)

// Rejection is a business refusal. Its Message is safe to show to the caller.
type Rejection struct {
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

// IsValidation reports whether the rejection came from the request body.
func (r Rejection) IsValidation() bool {
	return r.Reason == ReasonInvalidSubscription || r.Reason == ReasonInvalidReminder
}

func reject(reason Reason, format string, args ...any) Rejection {
	return Rejection{Reason: reason, Message: fmt.Sprintf(format, args...)}
}
