package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go-page-builder/internal/builder"
	"go-page-builder/internal/datasource"
	"go-page-builder/internal/dnd"
	"go-page-builder/internal/export"
	"go-page-builder/internal/generator"
	"go-page-builder/internal/pagemanager"
)

const maxBodyBytes = 5 << 20

var (
	errBadRequest        = errors.New("bad request")
	errComponentNotFound = errors.New("component not found")
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// readJSON decodes a size-limited request body into v. Unknown fields are rejected.
func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty request body", errBadRequest)
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// readBody reads a size-limited raw request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return data, nil
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pagemanager.ErrProjectNotFound),
		errors.Is(err, pagemanager.ErrPageNotFound),
		errors.Is(err, datasource.ErrNotFound),
		errors.Is(err, errComponentNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, pagemanager.ErrInvalidInput),
		errors.Is(err, datasource.ErrInvalid),
		errors.Is(err, datasource.ErrNotHTTP),
		errors.Is(err, export.ErrInvalidFormat),
		errors.Is(err, generator.ErrUnknownType),
		errors.Is(err, generator.ErrUnknownTemplate):
		return http.StatusBadRequest
	case errors.Is(err, dnd.ErrDragInProgress),
		errors.Is(err, dnd.ErrNotDragging),
		errors.Is(err, builder.ErrClosed):
		return http.StatusConflict
	case errors.Is(err, datasource.ErrFetch):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// serverError writes err as a JSON error body. Internal errors are logged and
// their details are not sent to the client.
func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	switch {
	case status == http.StatusInternalServerError:
		app.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = http.StatusText(status)
	case status >= 500:
		app.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	default:
		app.logger.Debug("Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
