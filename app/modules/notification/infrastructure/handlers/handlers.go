package notificationhandlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	authdomain "github.com/Black-And-White-Club/scout-bot/app/modules/auth/domain"
	notificationservice "github.com/Black-And-White-Club/scout-bot/app/modules/notification/application"
	"github.com/Black-And-White-Club/scout-bot/internal/httpx"
	"github.com/Black-And-White-Club/scout-bot/internal/observability/attr"
)

// NotificationHandlers implements the Handlers interface.
type NotificationHandlers struct {
	service notificationservice.Service
	logger  *slog.Logger
}

// NewNotificationHandlers creates a new NotificationHandlers instance.
func NewNotificationHandlers(service notificationservice.Service, logger *slog.Logger) Handlers {
	return &NotificationHandlers{
		service: service,
		logger:  logger,
	}
}

// SubscribeResponse is returned by HandleSubscribe.
type SubscribeResponse struct {
	Message       string     `json:"message"`
	Created       bool       `json:"created"`
	ScheduledTime *time.Time `json:"scheduled_time,omitempty"`
}

// UnsubscribeResponse is returned by HandleUnsubscribe.
type UnsubscribeResponse struct {
	Message string `json:"message"`
	Deleted int    `json:"deleted"`
}

func statusForRejection(rej notificationservice.Rejection) int {
	switch {
	case rej.IsValidation():
		return http.StatusUnprocessableEntity
	case rej.Reason == notificationservice.ReasonNotInTeam, rej.Reason == notificationservice.ReasonNotAssigned:
		return http.StatusForbidden
	case rej.Reason == notificationservice.ReasonNotFound:
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func (h *NotificationHandlers) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg, attr.ExtractCorrelationID(r.Context()), attr.Error(err))
	httpx.WriteError(w, http.StatusInternalServerError, "internal error", "")
}

// HandleVAPIDPublicKey returns the key the browser subscribes with.
func (h *NotificationHandlers) HandleVAPIDPublicKey(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"publicKey": h.service.VAPIDPublicKey()})
}

// HandleSubscribe creates or refreshes the caller's push subscription.
func (h *NotificationHandlers) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	scout, ok := authdomain.ScoutFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req notificationservice.SubscribeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	result, err := h.service.Subscribe(r.Context(), scout, req)
	if err != nil {
		h.internalError(w, r, "Failed to subscribe", err)
		return
	}
	if result.IsFailure() {
		httpx.WriteError(w, statusForRejection(*result.Failure), result.Failure.Message, string(result.Failure.Reason))
		return
	}

	resp := SubscribeResponse{
		Message:       "Subscription updated",
		Created:       result.Success.Created,
		ScheduledTime: result.Success.ScheduledTime,
	}
	if resp.Created {
		resp.Message = "Subscription created"
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleUnsubscribe deletes the caller's subscriptions. An empty body removes all
// of them in the caller's team.
func (h *NotificationHandlers) HandleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	scout, ok := authdomain.ScoutFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req notificationservice.UnsubscribeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		httpx.WriteError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	result, err := h.service.Unsubscribe(r.Context(), scout, req)
	if err != nil {
		h.internalError(w, r, "Failed to unsubscribe", err)
		return
	}
	if result.IsFailure() {
		httpx.WriteError(w, statusForRejection(*result.Failure), result.Failure.Message, string(result.Failure.Reason))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, UnsubscribeResponse{Message: "Subscription deleted", Deleted: *result.Success})
}
