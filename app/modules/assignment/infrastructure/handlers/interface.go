package assignmenthandlers

import "net/http"

// Handlers serves the assignment HTTP API.
type Handlers interface {
	HandleCreate(w http.ResponseWriter, r *http.Request)
	HandleComplete(w http.ResponseWriter, r *http.Request)
	HandleDelete(w http.ResponseWriter, r *http.Request)
	HandleList(w http.ResponseWriter, r *http.Request)
}
