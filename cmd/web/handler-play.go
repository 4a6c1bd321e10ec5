package main

import (
	"net/http"
	"net/url"

	"github.com/myrjola/spotfake/internal/content"
	"github.com/myrjola/spotfake/internal/game"
	"github.com/myrjola/spotfake/internal/pack"
	"github.com/myrjola/spotfake/internal/random"
)

type itemView struct {
	ID       string
	Kind     content.Kind
	Title    string
	MediaSrc string
}

func newItemView(item content.Item) itemView {
	src := item.MediaRef
	// Inlined payloads go straight into the src attribute, file references
	// are served through the media handler.
	if !pack.IsDataURL(src) {
		src = "/media/" + url.PathEscape(item.ID)
	}
	return itemView{
		ID:       item.ID,
		Kind:     item.Kind,
		Title:    item.Title,
		MediaSrc: src,
	}
}

type playTemplateData struct {
	BaseTemplateData

	Snapshot game.Snapshot
	Current  *itemView
	Bonus    []itemView
}

func (app *application) playTemplateData(r *http.Request, live *liveSession) playTemplateData {
	snapshot := live.game.Snapshot()
	data := playTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		Snapshot:         snapshot,
	}
	if snapshot.Current != nil {
		view := newItemView(*snapshot.Current)
		data.Current = &view
	}
	for _, choice := range snapshot.BonusChoices {
		data.Bonus = append(data.Bonus, newItemView(choice))
	}
	return data
}

func (app *application) playStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	items, err := app.store.All(ctx)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if len(items) == 0 {
		app.sessionManager.Put(ctx, "flash", "Add content before starting a game.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	id := app.gameID(r)
	if id == "" {
		if id, err = random.Letters(20); err != nil {
			app.serverError(w, r, err)
			return
		}
		app.sessionManager.Put(ctx, gameIDSessionKey, id)
	}

	forceBonus := r.PostFormValue("forceBonus") == "on"
	if err = app.hub.Start(id, items, app.sessionLength, forceBonus); err != nil {
		app.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/play", http.StatusSeeOther)
}

func (app *application) play(w http.ResponseWriter, r *http.Request) {
	live := app.hub.Get(app.gameID(r))
	if live == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if _, ended := live.Results(); ended {
		http.Redirect(w, r, "/results", http.StatusSeeOther)
		return
	}

	app.render(w, r, http.StatusOK, "play", app.playTemplateData(r, live))
}

// respondWithGame renders the game area partial for htmx requests and falls
// back to a redirect for plain form posts.
func (app *application) respondWithGame(w http.ResponseWriter, r *http.Request, live *liveSession) {
	if app.htmx.NewHandler(w, r).IsHxRequest() {
		app.renderPartial(w, r, "play", "game", app.playTemplateData(r, live))
		return
	}
	http.Redirect(w, r, "/play", http.StatusSeeOther)
}

func (app *application) playAnswer(w http.ResponseWriter, r *http.Request) {
	live := app.hub.Get(app.gameID(r))
	if live == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	live.game.SubmitAnswer(r.PostFormValue("guess") == "authentic")
	live.watchdog.Touch()

	app.respondWithGame(w, r, live)
}

func (app *application) playBonus(w http.ResponseWriter, r *http.Request) {
	live := app.hub.Get(app.gameID(r))
	if live == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	live.game.SubmitBonusAnswer(r.PostFormValue("itemID"))
	live.watchdog.Touch()

	app.respondWithGame(w, r, live)
}

func (app *application) playFinish(w http.ResponseWriter, r *http.Request) {
	live := app.hub.Get(app.gameID(r))
	if live == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	live.game.Finish()

	http.Redirect(w, r, "/results", http.StatusSeeOther)
}

func (app *application) playAbandon(w http.ResponseWriter, r *http.Request) {
	app.hub.Abandon(app.gameID(r))
	app.sessionManager.Put(r.Context(), "flash", "Game abandoned.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (app *application) playState(w http.ResponseWriter, r *http.Request) {
	live := app.hub.Get(app.gameID(r))
	if live == nil {
		app.notFound(w, r)
		return
	}

	app.renderPartial(w, r, "play", "game", app.playTemplateData(r, live))
}

func (app *application) playActivity(w http.ResponseWriter, r *http.Request) {
	if live := app.hub.Get(app.gameID(r)); live != nil {
		live.watchdog.Touch()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) playResume(w http.ResponseWriter, r *http.Request) {
	live := app.hub.Get(app.gameID(r))
	if live == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	live.watchdog.Resume()

	app.respondWithGame(w, r, live)
}
