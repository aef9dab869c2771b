package notificationhandlers

import "net/http"

// Handlers serves the notification HTTP API.
type Handlers interface {
	HandleVAPIDPublicKey(w http.ResponseWriter, r *http.Request)
	HandleSubscribe(w http.ResponseWriter, r *http.Request)
	HandleUnsubscribe(w http.ResponseWriter, r *http.Request)
}
