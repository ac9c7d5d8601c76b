package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/justinas/nosurf"
)

// routes sets up the HTTP router for the builder API.
func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(app.cfg.Server.Timeout))

	r.Get("/healthz", app.healthHandler)
	r.Get("/preview/{projectID}/{slug}", app.previewHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/csrf", app.csrfHandler)
		r.Get("/palette", app.paletteHandler)
		r.Post("/render", app.renderHandler)

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", app.listProjectsHandler)
			r.Post("/", app.createProjectHandler)
			r.Post("/demo", app.seedDemoHandler)

			r.Route("/{projectID}", func(r chi.Router) {
				r.Get("/", app.getProjectHandler)
				r.Patch("/", app.renameProjectHandler)
				r.Delete("/", app.deleteProjectHandler)
				r.Post("/pages", app.createPageHandler)

				r.Route("/pages/{pageID}", func(r chi.Router) {
					r.Get("/", app.getPageHandler)
					r.Patch("/", app.renamePageHandler)
					r.Delete("/", app.deletePageHandler)

					// Editing session
					r.Get("/components", app.listComponentsHandler)
					r.Post("/components", app.addComponentHandler)
					r.Put("/components", app.replaceComponentsHandler)
					r.Patch("/components/{componentID}", app.updateComponentHandler)
					r.Delete("/components/{componentID}", app.deleteComponentHandler)
					r.Post("/components/{componentID}/duplicate", app.duplicateComponentHandler)
					r.Post("/move", app.moveHandler)
					r.Get("/selection", app.selectionHandler)
					r.Post("/select", app.selectHandler)
					r.Post("/drag/start", app.dragStartHandler)
					r.Post("/drag/end", app.dragEndHandler)
					r.Post("/drag/cancel", app.dragCancelHandler)

					// Export
					r.Get("/export.json", app.exportJSONHandler)
					r.Get("/export.md", app.exportMarkdownHandler)
					r.Get("/export.html", app.exportHTMLHandler)
				})
			})
		})

		r.Route("/datasources", func(r chi.Router) {
			r.Get("/", app.listDataSourcesHandler)
			r.Post("/", app.createDataSourceHandler)
			r.Post("/refresh", app.refreshAllDataSourcesHandler)
			r.Get("/{sourceID}", app.getDataSourceHandler)
			r.Put("/{sourceID}", app.updateDataSourceHandler)
			r.Delete("/{sourceID}", app.deleteDataSourceHandler)
			r.Post("/{sourceID}/refresh", app.refreshDataSourceHandler)
		})
	})

	if !app.cfg.Server.CSRF {
		return r
	}
	csrf := nosurf.New(r)
	csrf.SetFailureHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.logger.Warn("CSRF check failed", "path", r.URL.Path, "reason", nosurf.Reason(r))
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "CSRF token missing or invalid"})
	}))
	return csrf
}
