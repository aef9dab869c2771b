package leaderboardhandlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	authdomain "github.com/Black-And-White-Club/scout-bot/app/modules/auth/domain"
	leaderboardservice "github.com/Black-And-White-Club/scout-bot/app/modules/leaderboard/application"
	"github.com/Black-And-White-Club/scout-bot/internal/httpx"
	"github.com/Black-And-White-Club/scout-bot/internal/observability/attr"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// LeaderboardHandlers implements the Handlers interface.
type LeaderboardHandlers struct {
	service leaderboardservice.Service
	logger  *slog.Logger
}

// NewLeaderboardHandlers creates a new LeaderboardHandlers instance.
func NewLeaderboardHandlers(service leaderboardservice.Service, logger *slog.Logger) Handlers {
	return &LeaderboardHandlers{
		service: service,
		logger:  logger,
	}
}

type leaderboardResponse struct {
	Sort      leaderboardservice.SortKey     `json:"sort"`
	EventCode string                         `json:"event_code,omitempty"`
	Teams     []leaderboardservice.TeamStats `json:"teams"`
}

func (h *LeaderboardHandlers) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg, attr.ExtractCorrelationID(r.Context()), attr.Error(err))
	httpx.WriteError(w, http.StatusInternalServerError, "internal error", "")
}

func (h *LeaderboardHandlers) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	key := leaderboardservice.ParseSortKey(r.URL.Query().Get("sort"))
	event := strings.TrimSpace(r.URL.Query().Get("event"))

	teams, err := h.service.Leaderboard(r.Context(), key, event)
	if err != nil {
		h.fail(w, r, "Failed to build leaderboard", err)
		return
	}
	if teams == nil {
		teams = []leaderboardservice.TeamStats{}
	}
	httpx.WriteJSON(w, http.StatusOK, leaderboardResponse{Sort: key, EventCode: event, Teams: teams})
}

type matchesResponse struct {
	EventCode string                            `json:"event_code,omitempty"`
	Matches   []leaderboardservice.MatchSummary `json:"matches"`
}

// HandleMatches lists per-match alliance totals from the scout's organization.
func (h *LeaderboardHandlers) HandleMatches(w http.ResponseWriter, r *http.Request) {
	scout, ok := authdomain.ScoutFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	event := strings.TrimSpace(r.URL.Query().Get("event"))

	matches, err := h.service.MatchSummaries(r.Context(), event, scout)
	if err != nil {
		h.fail(w, r, "Failed to build match summaries", err)
		return
	}
	if matches == nil {
		matches = []leaderboardservice.MatchSummary{}
	}
	httpx.WriteJSON(w, http.StatusOK, matchesResponse{EventCode: event, Matches: matches})
}

func (h *LeaderboardHandlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	key := leaderboardservice.ParseSortKey(r.URL.Query().Get("sort"))
	event := strings.TrimSpace(r.URL.Query().Get("event"))

	data, err := h.service.ExportLeaderboard(r.Context(), key, event)
	if err != nil {
		h.fail(w, r, "Failed to export leaderboard", err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="leaderboard-%s.xlsx"`, key))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *LeaderboardHandlers) HandleTeamStats(w http.ResponseWriter, r *http.Request) {
	team, err := httpx.IntParam(r, "team")
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	stats, err := h.service.TeamStats(r.Context(), team)
	if err != nil {
		h.fail(w, r, "Failed to load team stats", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stats)
}

// parseTeams reads ?teams=1,2,3, falling back to ?team1=&team2=&team3=.
func parseTeams(r *http.Request) ([]int, error) {
	q := r.URL.Query()
	var raw []string
	if list := q.Get("teams"); list != "" {
		raw = strings.Split(list, ",")
	} else {
		for i := 1; i <= 3; i++ {
			if v := q.Get("team" + strconv.Itoa(i)); v != "" {
				raw = append(raw, v)
			}
		}
	}

	teams := make([]int, 0, len(raw))
	for _, s := range raw {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("invalid team number %q", s)
		}
		teams = append(teams, n)
	}
	return teams, nil
}

func (h *LeaderboardHandlers) compareError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, leaderboardservice.ErrInvalidComparison) {
		httpx.WriteError(w, http.StatusBadRequest, "At least 2 and at most 3 distinct teams are required", "invalid_comparison")
		return
	}
	h.fail(w, r, "Failed to compare teams", err)
}

func (h *LeaderboardHandlers) HandleCompare(w http.ResponseWriter, r *http.Request) {
	scout, ok := authdomain.ScoutFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	teams, err := parseTeams(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	comparisons, err := h.service.Compare(r.Context(), teams, scout)
	if err != nil {
		h.compareError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, comparisons)
}

func (h *LeaderboardHandlers) HandleCompareChart(w http.ResponseWriter, r *http.Request) {
	scout, ok := authdomain.ScoutFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	teams, err := parseTeams(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	png, err := h.service.CompareChart(r.Context(), teams, scout)
	if err != nil {
		h.compareError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
