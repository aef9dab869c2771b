package authhandlers

import (
	"net/http"

	authdomain "github.com/Black-And-White-Club/scout-bot/app/modules/auth/domain"
	"github.com/Black-And-White-Club/scout-bot/internal/httpx"
)

type meResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	TeamNumber   int    `json:"team_number"`
	Role         string `json:"role"`
	Organization string `json:"organization"`
}

// HandleMe returns the authenticated scout.
func HandleMe(w http.ResponseWriter, r *http.Request) {
	scout, ok := authdomain.ScoutFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, meResponse{
		ID:           scout.ID,
		Name:         scout.Name,
		TeamNumber:   scout.TeamNumber,
		Role:         scout.Role.String(),
		Organization: scout.Organization(),
	})
}
