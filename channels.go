package main

import (
	"log"
	"net/http"

	"github.com/cuotos/slackstorm/handler"
)

// ChannelsHandler serves the menu entries to editor plugins. When authToken is
// set the caller must send it in the Authentication header.
func ChannelsHandler(h handler.RelayHandler, authToken string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		if r.Method != http.MethodGet {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		if !authorized(r.Header, authToken) {
			log.Println("[WARN] rejected /channels request with bad auth token")
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}

		log.Printf("[TRACE] listing channels for %s", r.RemoteAddr)
		writeRelayResponse(w, h.Channels(r.Context()))
	}
}

// authorized reports whether header carries authToken in Authentication. An
// empty authToken lets everyone through.
func authorized(header http.Header, authToken string) bool {
	return authToken == "" || header.Get("Authentication") == authToken
}
