package notificationservice

import (
	"time"

	"github.com/Black-And-White-Club/scout-bot/app/events"
	assignmentdb "github.com/Black-And-White-Club/scout-bot/app/modules/assignment/infrastructure/repositories"
	"github.com/Black-And-White-Club/scout-bot/app/modules/notification/infrastructure/push"
	notificationdb "github.com/Black-And-White-Club/scout-bot/app/modules/notification/infrastructure/repositories"
)

const (
	manageURL = "/team/manage"

	typeReminder      = "assignment_reminder"
	typeNewAssignment = "new_assignment"

	defaultAssignedBody = "You have been assigned a new task"
)

// reminderAt is when a reminder for due fires given a lead time in minutes.
func reminderAt(due time.Time, minutes int) time.Time {
	return due.Add(-time.Duration(minutes) * time.Minute)
}

// scheduleReminder sets the schedule and reminder content of sub for assignment a.
func scheduleReminder(sub *notificationdb.Subscription, a *assignmentdb.Assignment, at time.Time) {
	sub.ScheduledTime = &at
	sub.Sent = false
	sub.SentAt = nil
	sub.Status = notificationdb.StatusPending
	sub.Title = "Assignment Reminder: " + a.Title
	sub.Body = "Your assignment '" + a.Title + "' is due soon"
	sub.URL = manageURL
	sub.Data = map[string]any{
		"type":          typeReminder,
		"assignment_id": a.ID.String(),
		"title":         a.Title,
		"due_date":      a.DueDate.UTC().Format(time.RFC3339),
	}
}

func assignedNotification(created events.AssignmentCreatedPayloadV1) push.Notification {
	body := created.Description
	if body == "" {
		body = defaultAssignedBody
	}
	id := created.AssignmentID
	return push.Notification{
		Title:        "New Assignment: " + created.Title,
		Body:         body,
		URL:          manageURL,
		AssignmentID: &id,
		Data: map[string]any{
			"type":  typeNewAssignment,
			"title": created.Title,
		},
	}
}

func storedNotification(sub notificationdb.Subscription) push.Notification {
	return push.Notification{
		Title:        sub.Title,
		Body:         sub.Body,
		URL:          sub.URL,
		AssignmentID: sub.AssignmentID,
		Data:         sub.Data,
	}
}
