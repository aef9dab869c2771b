package assignmenthandlers

import (
	"log/slog"
	"net/http"

	assignmentservice "github.com/Black-And-White-Club/scout-bot/app/modules/assignment/application"
	assignmentdb "github.com/Black-And-White-Club/scout-bot/app/modules/assignment/infrastructure/repositories"
	authdomain "github.com/Black-And-White-Club/scout-bot/app/modules/auth/domain"
	"github.com/Black-And-White-Club/scout-bot/internal/httpx"
	"github.com/Black-And-White-Club/scout-bot/internal/observability/attr"
)

// AssignmentHandlers implements the Handlers interface.
type AssignmentHandlers struct {
	service assignmentservice.Service
	logger  *slog.Logger
}

// NewAssignmentHandlers creates a new AssignmentHandlers instance.
func NewAssignmentHandlers(service assignmentservice.Service, logger *slog.Logger) Handlers {
	return &AssignmentHandlers{
		service: service,
		logger:  logger,
	}
}

func statusForRejection(rej assignmentservice.Rejection) int {
	switch {
	case rej.IsValidation():
		return http.StatusUnprocessableEntity
	case rej.Reason == assignmentservice.ReasonForbidden, rej.Reason == assignmentservice.ReasonNotAssigned:
		return http.StatusForbidden
	case rej.Reason == assignmentservice.ReasonNotFound:
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func (h *AssignmentHandlers) writeResult(w http.ResponseWriter, r *http.Request, status int, result assignmentservice.AssignmentResult, err error) {
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Assignment operation failed", attr.ExtractCorrelationID(r.Context()), attr.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal error", "")
		return
	}
	if result.IsFailure() {
		httpx.WriteError(w, statusForRejection(*result.Failure), result.Failure.Message, string(result.Failure.Reason))
		return
	}
	httpx.WriteJSON(w, status, *result.Success)
}

// HandleCreate creates an assignment for the admin's team.
func (h *AssignmentHandlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	scout, ok := authdomain.ScoutFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var input assignmentservice.CreateInput
	if err := httpx.DecodeJSON(w, r, &input); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	result, err := h.service.Create(r.Context(), input, scout)
	h.writeResult(w, r, http.StatusCreated, result, err)
}

// HandleComplete marks an assignment completed by the calling assignee.
func (h *AssignmentHandlers) HandleComplete(w http.ResponseWriter, r *http.Request) {
	scout, ok := authdomain.ScoutFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	result, err := h.service.Complete(r.Context(), id, scout)
	h.writeResult(w, r, http.StatusOK, result, err)
}

// HandleDelete removes an assignment.
func (h *AssignmentHandlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	scout, ok := authdomain.ScoutFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	result, err := h.service.Delete(r.Context(), id, scout)
	h.writeResult(w, r, http.StatusOK, result, err)
}

// HandleList returns the assignments of the caller's team.
func (h *AssignmentHandlers) HandleList(w http.ResponseWriter, r *http.Request) {
	scout, ok := authdomain.ScoutFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	if scout.TeamNumber <= 0 {
		httpx.WriteJSON(w, http.StatusOK, []assignmentdb.Assignment{})
		return
	}

	assignments, err := h.service.ListForTeam(r.Context(), scout.TeamNumber)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to list assignments", attr.ExtractCorrelationID(r.Context()), attr.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal error", "")
		return
	}
	if assignments == nil {
		assignments = []assignmentdb.Assignment{}
	}
	httpx.WriteJSON(w, http.StatusOK, assignments)
}
