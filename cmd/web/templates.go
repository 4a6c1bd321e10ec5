package main

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/myrjola/spotfake/internal/contexthelpers"
	"github.com/myrjola/spotfake/internal/errors"
	"github.com/myrjola/spotfake/ui"
)

type BaseTemplateData struct {
	CurrentPath string
	Flash       string
}

func (app *application) newBaseTemplateData(r *http.Request) BaseTemplateData {
	return BaseTemplateData{
		CurrentPath: contexthelpers.CurrentPath(r.Context()),
		Flash:       app.sessionManager.PopString(r.Context(), "flash"),
	}
}

// pageTemplate returns a template for the given page name.
//
// pageName corresponds to a directory inside ui/templates/pages. It has to
// include a template named "page".
func (app *application) pageTemplate(pageName string) (*template.Template, error) {
	// The FuncMap needs placeholders before parsing. The render functions
	// override these with per-request values.
	t := template.New(pageName).Funcs(template.FuncMap{
		"nonce": func() string {
			panic("not implemented")
		},
		"csrf": func() string {
			panic("not implemented")
		},
		"add": func(a, b int) int {
			return a + b
		},
	})
	return t.ParseFS(ui.Files,
		"templates/base.gohtml",
		fmt.Sprintf("templates/pages/%s/*.gohtml", pageName))
}

func (app *application) requestFuncs(r *http.Request) template.FuncMap {
	ctx := r.Context()
	nonce := fmt.Sprintf("nonce=\"%s\"", contexthelpers.CSPNonce(ctx))
	csrf := fmt.Sprintf("<input type=\"hidden\" name=\"csrf_token\" value=\"%s\"/>", contexthelpers.CSRFToken(ctx))
	return template.FuncMap{
		"nonce": func() template.HTMLAttr {
			return template.HTMLAttr(nonce) //nolint:gosec // we trust the nonce since it's not provided by user.
		},
		"csrf": func() template.HTML {
			return template.HTML(csrf) //nolint:gosec // we trust the csrf since it's not provided by user.
		},
	}
}

func (app *application) render(w http.ResponseWriter, r *http.Request, status int, file string, data any) {
	app.renderTemplate(w, r, status, file, "base", data)
}

// renderPartial renders a named template from the page instead of the whole
// document, for htmx swap responses.
func (app *application) renderPartial(w http.ResponseWriter, r *http.Request, file string, name string, data any) {
	app.renderTemplate(w, r, http.StatusOK, file, name, data)
}

func (app *application) renderTemplate(w http.ResponseWriter, r *http.Request, status int, file string, name string, data any) {
	t, err := app.pageTemplate(file)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "parse template", slog.String("template", file)))
		return
	}

	buf := new(bytes.Buffer)
	t.Funcs(app.requestFuncs(r))
	if err = t.ExecuteTemplate(buf, name, data); err != nil {
		app.serverError(w, r, errors.Wrap(err, "execute template", slog.String("template", file)))
		return
	}

	w.WriteHeader(status)

	_, _ = buf.WriteTo(w)
}
