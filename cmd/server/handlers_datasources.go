package main

import (
	"net/http"

	"go-page-builder/internal/model"

	"github.com/go-chi/chi/v5"
)

func (app *application) listDataSourcesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, app.sources.List())
}

func (app *application) createDataSourceHandler(w http.ResponseWriter, r *http.Request) {
	var req model.DataSource
	if err := readJSON(w, r, &req); err != nil {
		app.serverError(w, r, err)
		return
	}
	req.ID = ""
	ds, err := app.sources.Add(req)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ds)
}

func (app *application) getDataSourceHandler(w http.ResponseWriter, r *http.Request) {
	ds, err := app.sources.Get(chi.URLParam(r, "sourceID"))
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

// updateDataSourceHandler replaces the editable fields of a source. Cached
// data and fetch time are kept unless the type changes.
func (app *application) updateDataSourceHandler(w http.ResponseWriter, r *http.Request) {
	var req model.DataSource
	if err := readJSON(w, r, &req); err != nil {
		app.serverError(w, r, err)
		return
	}
	ds, err := app.sources.Update(chi.URLParam(r, "sourceID"), func(ds *model.DataSource) {
		if ds.Type != req.Type {
			ds.CachedData = nil
			ds.LastFetched = nil
		}
		ds.Name = req.Name
		ds.Type = req.Type
		ds.JSONData = req.JSONData
		ds.KeyValueData = req.KeyValueData
		ds.HTTPConfig = req.HTTPConfig
	})
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

func (app *application) deleteDataSourceHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.sources.Delete(chi.URLParam(r, "sourceID")); err != nil {
		app.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) refreshDataSourceHandler(w http.ResponseWriter, r *http.Request) {
	ds, err := app.sources.Refresh(r.Context(), chi.URLParam(r, "sourceID"))
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

// refreshAllDataSourcesHandler refreshes every http-api source. Sources that
// failed keep their previous data and are reported in the error.
func (app *application) refreshAllDataSourcesHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.sources.RefreshAll(r.Context()); err != nil {
		app.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app.sources.List())
}
