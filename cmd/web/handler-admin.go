package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/myrjola/spotfake/internal/content"
	"github.com/myrjola/spotfake/internal/errors"
	"github.com/myrjola/spotfake/internal/pack"
)

// maxImportBytes bounds uploaded package archives.
const maxImportBytes = 256 << 20

type adminTemplateData struct {
	BaseTemplateData

	Items []content.Item
}

func (app *application) admin(w http.ResponseWriter, r *http.Request) {
	items, err := app.store.All(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	data := adminTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		Items:            items,
	}

	app.render(w, r, http.StatusOK, "admin", data)
}

func (app *application) adminCreateItem(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	var hints []string
	for _, hint := range strings.Split(r.PostFormValue("detectionHints"), "\n") {
		if hint = strings.TrimSpace(hint); hint != "" {
			hints = append(hints, hint)
		}
	}

	item := content.Item{
		ID:             uuid.NewString(),
		Kind:           content.Kind(r.PostFormValue("kind")),
		MediaRef:       r.PostFormValue("mediaRef"),
		Authentic:      r.PostFormValue("authentic") == "on",
		Title:          r.PostFormValue("title"),
		Explanation:    r.PostFormValue("explanation"),
		DetectionHints: hints,
		Category:       r.PostFormValue("category"),
		ShortHint:      r.PostFormValue("shortHint"),
		GeneratorLabel: r.PostFormValue("generatorLabel"),
	}
	if item.Kind != content.KindImage && item.Kind != content.KindVideo {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	if err := app.store.Put(r.Context(), item); err != nil {
		app.serverError(w, r, err)
		return
	}

	app.sessionManager.Put(r.Context(), "flash", "Item added.")
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (app *application) adminDeleteItem(w http.ResponseWriter, r *http.Request) {
	id := r.PostFormValue("id")
	if id == "" {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	if err := app.store.Remove(r.Context(), id); err != nil {
		app.serverError(w, r, err)
		return
	}

	app.sessionManager.Put(r.Context(), "flash", "Item removed.")
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (app *application) adminExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	items, err := app.store.All(ctx)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	archive, err := app.codec.Export(ctx, items)
	if err != nil {
		if errors.Is(err, pack.ErrNothingToExport) {
			app.sessionManager.Put(ctx, "flash", "There is no content to export.")
			http.Redirect(w, r, "/admin", http.StatusSeeOther)
			return
		}
		app.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="spotfake-library.zip"`)
	w.Header().Set("Content-Length", fmt.Sprint(len(archive)))
	_, _ = w.Write(archive)
}

func (app *application) adminImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("package")
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	defer func() {
		_ = file.Close()
	}()

	archive, err := io.ReadAll(io.LimitReader(file, maxImportBytes))
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "read upload", slog.String("filename", header.Filename)))
		return
	}

	count, err := app.codec.Import(ctx, archive, app.store)
	if err != nil {
		switch {
		case errors.Is(err, pack.ErrNotAPackage):
			app.sessionManager.Put(ctx, "flash", "That file is not a content package.")
		case errors.Is(err, pack.ErrCorruptPackage):
			app.sessionManager.Put(ctx, "flash", "The package is corrupt and could not be imported.")
		default:
			app.serverError(w, r, err)
			return
		}
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	app.sessionManager.Put(ctx, "flash", fmt.Sprintf("Imported %d items.", count))
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}
