package main

import (
	"net/http"
)

type homeTemplateData struct {
	BaseTemplateData

	ItemCount int
	Playing   bool
}

func (app *application) home(w http.ResponseWriter, r *http.Request) {
	items, err := app.store.All(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	playing := false
	if live := app.hub.Get(app.gameID(r)); live != nil {
		if _, ended := live.Results(); !ended {
			playing = true
		}
	}

	data := homeTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		ItemCount:        len(items),
		Playing:          playing,
	}

	app.render(w, r, http.StatusOK, "home", data)
}
