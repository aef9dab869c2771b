package scoutinghandlers

import (
	"log/slog"
	"net/http"

	authdomain "github.com/Black-And-White-Club/scout-bot/app/modules/auth/domain"
	scoutingservice "github.com/Black-And-White-Club/scout-bot/app/modules/scouting/application"
	scoutingdb "github.com/Black-And-White-Club/scout-bot/app/modules/scouting/infrastructure/repositories"
	"github.com/Black-And-White-Club/scout-bot/internal/httpx"
	"github.com/Black-And-White-Club/scout-bot/internal/observability/attr"
	"github.com/google/uuid"
)

// ScoutingHandlers implements the Handlers interface.
type ScoutingHandlers struct {
	service scoutingservice.Service
	logger  *slog.Logger
}

// NewScoutingHandlers creates a new ScoutingHandlers instance.
func NewScoutingHandlers(service scoutingservice.Service, logger *slog.Logger) Handlers {
	return &ScoutingHandlers{
		service: service,
		logger:  logger,
	}
}

// teamEntriesResponse is the dashboard view of one team.
type teamEntriesResponse struct {
	TeamNumber int                   `json:"team_number"`
	HasData    bool                  `json:"has_data"`
	Entries    []scoutingdb.Entry    `json:"entries"`
	AutoPaths  []scoutingdb.AutoPath `json:"auto_paths"`
}

func statusForRejection(rej scoutingservice.Rejection) int {
	switch {
	case rej.IsValidation():
		return http.StatusUnprocessableEntity
	case rej.Reason == scoutingservice.ReasonDuplicateByOrg, rej.Reason == scoutingservice.ReasonAllianceFull:
		return http.StatusConflict
	case rej.Reason == scoutingservice.ReasonNotOwner:
		return http.StatusForbidden
	case rej.Reason == scoutingservice.ReasonNotFound:
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func (h *ScoutingHandlers) writeRejection(w http.ResponseWriter, rej scoutingservice.Rejection) {
	httpx.WriteError(w, statusForRejection(rej), rej.Message, string(rej.Reason))
}

func (h *ScoutingHandlers) writeFailure(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg, attr.ExtractCorrelationID(r.Context()), attr.Error(err))
	httpx.WriteError(w, http.StatusInternalServerError, "internal error", "")
}

func (h *ScoutingHandlers) writeAdmission(w http.ResponseWriter, r *http.Request, status int, result scoutingservice.AdmissionResult, err error) {
	if err != nil {
		h.writeFailure(w, r, "Scouting admission failed", err)
		return
	}
	if result.IsFailure() {
		h.writeRejection(w, *result.Failure)
		return
	}
	httpx.WriteJSON(w, status, map[string]uuid.UUID{"id": *result.Success})
}

// HandleSubmit admits a new entry for the authenticated scout.
func (h *ScoutingHandlers) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	scout, ok := authdomain.ScoutFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var input scoutingservice.EntryInput
	if err := httpx.DecodeJSON(w, r, &input); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	result, err := h.service.Submit(r.Context(), input, scout)
	h.writeAdmission(w, r, http.StatusCreated, result, err)
}

// HandleUpdate rewrites an entry owned by the authenticated scout.
func (h *ScoutingHandlers) HandleUpdate(w http.ResponseWriter, r *http.Request) {
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

	var input scoutingservice.EntryInput
	if err := httpx.DecodeJSON(w, r, &input); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	result, err := h.service.Update(r.Context(), id, input, scout)
	h.writeAdmission(w, r, http.StatusOK, result, err)
}

// HandleDelete removes an entry owned by the authenticated scout.
func (h *ScoutingHandlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
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
	h.writeAdmission(w, r, http.StatusOK, result, err)
}

// HandleGet returns one entry visible to the authenticated scout.
func (h *ScoutingHandlers) HandleGet(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.service.Get(r.Context(), id, scout)
	if err != nil {
		h.writeFailure(w, r, "Failed to load scouting entry", err)
		return
	}
	if result.IsFailure() {
		h.writeRejection(w, *result.Failure)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, *result.Success)
}

// HandleListByTeam returns the team dashboard scoped to the scout's organization.
func (h *ScoutingHandlers) HandleListByTeam(w http.ResponseWriter, r *http.Request) {
	scout, ok := authdomain.ScoutFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	team, err := httpx.IntParam(r, "team")
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	ctx := r.Context()

	entries, err := h.service.ListByTeam(ctx, team, scout)
	if err != nil {
		h.writeFailure(w, r, "Failed to list team entries", err)
		return
	}
	paths, err := h.service.AutoPaths(ctx, team, scout)
	if err != nil {
		h.writeFailure(w, r, "Failed to list auto paths", err)
		return
	}

	if entries == nil {
		entries = []scoutingdb.Entry{}
	}
	if paths == nil {
		paths = []scoutingdb.AutoPath{}
	}
	httpx.WriteJSON(w, http.StatusOK, teamEntriesResponse{
		TeamNumber: team,
		HasData:    len(entries) > 0,
		Entries:    entries,
		AutoPaths:  paths,
	})
}

// HandleHasTeamData tells the search box whether the scout's organization has
// scouted a team at all.
func (h *ScoutingHandlers) HandleHasTeamData(w http.ResponseWriter, r *http.Request) {
	scout, ok := authdomain.ScoutFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	team, err := httpx.IntParam(r, "team")
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	has, err := h.service.HasTeamData(r.Context(), team, scout)
	if err != nil {
		h.writeFailure(w, r, "Failed to check team data", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"team_number": team, "has_data": has})
}
