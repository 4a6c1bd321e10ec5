package main

import (
	"log/slog"
	"net/http"

	"github.com/myrjola/spotfake/internal/errors"
)

// media serves the payload behind an item's media reference. Inline data URLs
// never hit this handler, they are rendered directly into the page.
func (app *application) media(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	itemID := r.PathValue("itemID")

	items, err := app.store.All(ctx)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	for _, item := range items {
		if item.ID != itemID {
			continue
		}
		data, mime, resolveErr := app.resolver.Resolve(ctx, item.MediaRef)
		if resolveErr != nil {
			app.logger.LogAttrs(ctx, slog.LevelWarn, "resolve media",
				slog.String("item_id", itemID), errors.SlogError(resolveErr))
			app.notFound(w, r)
			return
		}
		w.Header().Set("Content-Type", mime)
		w.Header().Set("Cache-Control", "private, max-age=3600")
		_, _ = w.Write(data)
		return
	}

	app.notFound(w, r)
}
