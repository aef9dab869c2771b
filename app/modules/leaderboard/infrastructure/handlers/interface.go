package leaderboardhandlers

import "net/http"

// Handlers is the HTTP surface of the leaderboard module.
type Handlers interface {
	HandleLeaderboard(w http.ResponseWriter, r *http.Request)
	HandleExport(w http.ResponseWriter, r *http.Request)
	HandleTeamStats(w http.ResponseWriter, r *http.Request)
	HandleCompare(w http.ResponseWriter, r *http.Request)
	HandleCompareChart(w http.ResponseWriter, r *http.Request)
	HandleMatches(w http.ResponseWriter, r *http.Request)
}
