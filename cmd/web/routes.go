package main

import (
	"io/fs"
	"net/http"

	"github.com/justinas/alice"
	"github.com/myrjola/spotfake/ui"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	staticFS, err := fs.Sub(ui.Files, "static")
	if err != nil {
		panic(err)
	}
	mux.Handle("GET /static/", cacheForeverHeaders(http.StripPrefix("/static", http.FileServerFS(staticFS))))

	dynamic := alice.New(timeoutHandler, app.sessionManager.LoadAndSave, noSurf, commonContext)
	// The SSE stream outlives any fixed deadline and must not buffer the
	// response, so it skips the timeout handler and the write-on-save
	// session wrapper.
	stream := alice.New(app.serverSentEventMiddleware)

	mux.Handle("GET /{$}", dynamic.ThenFunc(app.home))

	mux.Handle("POST /play/start", dynamic.ThenFunc(app.playStart))
	mux.Handle("GET /play", dynamic.ThenFunc(app.play))
	mux.Handle("POST /play/answer", dynamic.ThenFunc(app.playAnswer))
	mux.Handle("POST /play/bonus", dynamic.ThenFunc(app.playBonus))
	mux.Handle("POST /play/finish", dynamic.ThenFunc(app.playFinish))
	mux.Handle("POST /play/abandon", dynamic.ThenFunc(app.playAbandon))
	mux.Handle("GET /play/state", dynamic.ThenFunc(app.playState))
	mux.Handle("POST /play/activity", dynamic.ThenFunc(app.playActivity))
	mux.Handle("POST /play/resume", dynamic.ThenFunc(app.playResume))
	mux.Handle("GET /play/stream", stream.ThenFunc(app.playStream))

	mux.Handle("GET /results", dynamic.ThenFunc(app.results))
	mux.Handle("GET /review", dynamic.ThenFunc(app.review))

	mux.Handle("GET /media/{itemID}", dynamic.ThenFunc(app.media))

	mux.Handle("GET /admin", dynamic.ThenFunc(app.admin))
	mux.Handle("POST /admin/items", dynamic.ThenFunc(app.adminCreateItem))
	mux.Handle("POST /admin/items/delete", dynamic.ThenFunc(app.adminDeleteItem))
	mux.Handle("GET /admin/export", dynamic.ThenFunc(app.adminExport))
	mux.Handle("POST /admin/import", dynamic.ThenFunc(app.adminImport))

	mux.HandleFunc("GET /api/healthy", app.healthy)

	return app.recoverPanic(app.logRequest(app.secureHeaders(mux)))
}
