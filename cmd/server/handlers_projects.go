package main

import (
	"net/http"

	"go-page-builder/internal/export"
	"go-page-builder/internal/generator"
	"go-page-builder/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/justinas/nosurf"
)

func (app *application) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// csrfHandler hands out the token clients send back in the X-CSRF-Token header.
func (app *application) csrfHandler(w http.ResponseWriter, r *http.Request) {
	if !app.cfg.Server.CSRF {
		writeJSON(w, http.StatusOK, map[string]any{"enabled": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"enabled": true,
		"header":  nosurf.HeaderName,
		"token":   nosurf.Token(r),
	})
}

func (app *application) paletteHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"components": generator.Definitions(),
		"templates":  generator.Templates(),
	})
}

// renderHandler renders posted export JSON to an HTML fragment, resolving
// placeholders against the registered data sources.
func (app *application) renderHandler(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	doc, err := export.Parse(body)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(app.engine.RenderTree(doc.Components, app.sources.List())))
}

type nameRequest struct {
	Name string `json:"name"`
}

func (app *application) listProjectsHandler(w http.ResponseWriter, r *http.Request) {
	projects, err := app.pages.ListProjects()
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (app *application) createProjectHandler(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := readJSON(w, r, &req); err != nil {
		app.serverError(w, r, err)
		return
	}
	p, err := app.pages.CreateProject(req.Name)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (app *application) seedDemoHandler(w http.ResponseWriter, r *http.Request) {
	p, err := app.pages.SeedDemo()
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (app *application) getProjectHandler(w http.ResponseWriter, r *http.Request) {
	p, err := app.pages.GetProject(chi.URLParam(r, "projectID"))
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (app *application) renameProjectHandler(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := readJSON(w, r, &req); err != nil {
		app.serverError(w, r, err)
		return
	}
	p, err := app.pages.RenameProject(chi.URLParam(r, "projectID"), req.Name)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (app *application) deleteProjectHandler(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	if err := app.pages.DeleteProject(projectID); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.sessions.forgetProject(projectID)
	w.WriteHeader(http.StatusNoContent)
}

type createPageRequest struct {
	Name string         `json:"name"`
	Type model.PageType `json:"type"`
}

func (app *application) createPageHandler(w http.ResponseWriter, r *http.Request) {
	var req createPageRequest
	if err := readJSON(w, r, &req); err != nil {
		app.serverError(w, r, err)
		return
	}
	page, err := app.pages.CreatePage(chi.URLParam(r, "projectID"), req.Name, req.Type)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, page)
}

func (app *application) getPageHandler(w http.ResponseWriter, r *http.Request) {
	page, err := app.pages.GetPage(chi.URLParam(r, "projectID"), chi.URLParam(r, "pageID"))
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (app *application) renamePageHandler(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := readJSON(w, r, &req); err != nil {
		app.serverError(w, r, err)
		return
	}
	page, err := app.pages.RenamePage(chi.URLParam(r, "projectID"), chi.URLParam(r, "pageID"), req.Name)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (app *application) deletePageHandler(w http.ResponseWriter, r *http.Request) {
	projectID, pageID := chi.URLParam(r, "projectID"), chi.URLParam(r, "pageID")
	if err := app.pages.DeletePage(projectID, pageID); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.sessions.forget(projectID, pageID)
	w.WriteHeader(http.StatusNoContent)
}

// previewHandler serves the rendered page found by its slug.
func (app *application) previewHandler(w http.ResponseWriter, r *http.Request) {
	project, page, err := app.pages.PageBySlug(chi.URLParam(r, "projectID"), chi.URLParam(r, "slug"))
	if err != nil {
		if statusFor(err) == http.StatusNotFound {
			http.NotFound(w, r)
			return
		}
		app.serverError(w, r, err)
		return
	}
	out, err := app.engine.RenderPage(page, project.Name, app.sources.List())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}
