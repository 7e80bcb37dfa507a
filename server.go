package main

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/cuotos/slackstorm/handler"
	"github.com/cuotos/slackstorm/metrics"
)

// maxDispatchBody caps a /dispatch request, selections are source snippets.
const maxDispatchBody = 1 << 20

func DispatchHandler(h handler.RelayHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		if r.Method != http.MethodPost {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDispatchBody))
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			log.Printf("[WARN] rejected /dispatch body over %d bytes", maxBytesErr.Limit)
			http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
			return
		}
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			log.Println("[ERROR] ", err)
			return
		}

		resp, err := h.HandleEvent(r.Context(), r.Header, body)
		if err != nil {
			log.Println("[ERROR] ", err)
		}

		writeRelayResponse(w, resp)
	}
}

func writeRelayResponse(w http.ResponseWriter, resp handler.RelayResponse) {
	metrics.IncRelayRequest(strconv.Itoa(resp.StatusCode))

	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	if len(resp.Body) > 0 {
		w.Write(resp.Body)
	}
}
