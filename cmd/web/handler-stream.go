package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/myrjola/spotfake/internal/errors"
)

// playStream pushes countdown ticks and state changes to the play screen over
// Server Sent Events. The stream closes when the game ends.
func (app *application) playStream(w http.ResponseWriter, r *http.Request) {
	id := app.gameID(r)
	if id == "" || app.hub.Get(id) == nil {
		app.notFound(w, r)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		app.serverError(w, r, errors.New("response writer does not support streaming"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events := app.hub.ticks.Subscribe(r.Context(), id)
	for event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			app.logger.Error("marshal tick event", errors.SlogError(err))
			return
		}
		if _, err = fmt.Fprintf(w, "event: tick\ndata: %s\n\n", payload); err != nil {
			// Client went away.
			return
		}
		flusher.Flush()
	}
}
