package scoutinghandlers

import "net/http"

// Handlers is the HTTP surface of the scouting module.
type Handlers interface {
	HandleSubmit(w http.ResponseWriter, r *http.Request)
	HandleUpdate(w http.ResponseWriter, r *http.Request)
	HandleDelete(w http.ResponseWriter, r *http.Request)
	HandleGet(w http.ResponseWriter, r *http.Request)
	HandleListByTeam(w http.ResponseWriter, r *http.Request)
	HandleHasTeamData(w http.ResponseWriter, r *http.Request)
}
