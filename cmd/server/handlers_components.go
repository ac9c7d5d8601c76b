package main

import (
	"fmt"
	"net/http"
	"time"

	"go-page-builder/internal/builder"
	"go-page-builder/internal/dnd"
	"go-page-builder/internal/export"
	"go-page-builder/internal/model"
	"go-page-builder/internal/tree"

	"github.com/go-chi/chi/v5"
)

// editResponse reports the outcome of a tree edit. Changed is false for no-ops.
type editResponse struct {
	Changed    bool               `json:"changed"`
	Selected   *model.Component   `json:"selected"`
	Component  *model.Component   `json:"component,omitempty"`
	Intent     string             `json:"intent,omitempty"`
	Components []*model.Component `json:"components"`
}

// respondEdit writes the edit outcome, or a conflict when the session was
// closed under the request and the edit was dropped.
func (app *application) respondEdit(w http.ResponseWriter, r *http.Request, s *builder.Session, changed bool, node *model.Component) {
	if !changed && s.Closed() {
		app.serverError(w, r, builder.ErrClosed)
		return
	}
	writeJSON(w, http.StatusOK, editResponse{
		Changed:    changed,
		Selected:   s.Selected(),
		Component:  node,
		Components: s.Components(),
	})
}

// session resolves the editing session of the page named in the URL.
func (app *application) session(w http.ResponseWriter, r *http.Request) (*builder.Session, bool) {
	s, err := app.sessions.get(chi.URLParam(r, "projectID"), chi.URLParam(r, "pageID"))
	if err != nil {
		app.serverError(w, r, err)
		return nil, false
	}
	return s, true
}

func (app *application) listComponentsHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := app.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Components())
}

type addComponentRequest struct {
	Type     model.ComponentType `json:"type"`
	Template string              `json:"template"`
	Index    *int                `json:"index"`
	ParentID string              `json:"parentId"`
}

// addComponentHandler creates a node from a palette type or a template and
// inserts it. A missing index appends.
func (app *application) addComponentHandler(w http.ResponseWriter, r *http.Request) {
	var req addComponentRequest
	if err := readJSON(w, r, &req); err != nil {
		app.serverError(w, r, err)
		return
	}
	if (req.Type == "") == (req.Template == "") {
		app.serverError(w, r, fmt.Errorf("%w: exactly one of type or template is required", errBadRequest))
		return
	}
	s, ok := app.session(w, r)
	if !ok {
		return
	}
	index := tree.Append
	if req.Index != nil {
		index = *req.Index
	}

	if req.Template != "" {
		node, err := s.InsertTemplate(req.Template, index, req.ParentID)
		if err != nil {
			app.serverError(w, r, err)
			return
		}
		app.respondEdit(w, r, s, node != nil, node)
		return
	}

	node, err := s.NewComponent(req.Type)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if !s.AddComponent(node, index, req.ParentID) {
		app.respondEdit(w, r, s, false, nil)
		return
	}
	app.respondEdit(w, r, s, true, node)
}

func (app *application) replaceComponentsHandler(w http.ResponseWriter, r *http.Request) {
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
	s, ok := app.session(w, r)
	if !ok {
		return
	}
	app.respondEdit(w, r, s, s.Replace(doc.Components), nil)
}

type updateComponentRequest struct {
	Props  *model.Props  `json:"props"`
	Styles *model.Styles `json:"styles"`
}

// updateComponentHandler replaces the props and/or styles of a node.
func (app *application) updateComponentHandler(w http.ResponseWriter, r *http.Request) {
	var req updateComponentRequest
	if err := readJSON(w, r, &req); err != nil {
		app.serverError(w, r, err)
		return
	}
	var patches []tree.Patch
	if req.Props != nil {
		patches = append(patches, tree.ReplaceProps(*req.Props))
	}
	if req.Styles != nil {
		patches = append(patches, tree.ReplaceStyles(*req.Styles))
	}
	if len(patches) == 0 {
		app.serverError(w, r, fmt.Errorf("%w: props or styles is required", errBadRequest))
		return
	}
	s, ok := app.session(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "componentID")
	if tree.Find(s.Components(), id) == nil {
		app.serverError(w, r, fmt.Errorf("%w: %s", errComponentNotFound, id))
		return
	}
	changed := s.UpdateComponent(id, patches...)
	app.respondEdit(w, r, s, changed, tree.Find(s.Components(), id))
}

func (app *application) deleteComponentHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := app.session(w, r)
	if !ok {
		return
	}
	app.respondEdit(w, r, s, s.DeleteComponent(chi.URLParam(r, "componentID")), nil)
}

func (app *application) duplicateComponentHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := app.session(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "componentID")
	if tree.Find(s.Components(), id) == nil {
		app.serverError(w, r, fmt.Errorf("%w: %s", errComponentNotFound, id))
		return
	}
	node := s.DuplicateComponent(id)
	app.respondEdit(w, r, s, node != nil, node)
}

// moveRequest is either a sibling reorder (from, to, parentId) or a move into a
// container (id, containerId).
type moveRequest struct {
	From        *int   `json:"from"`
	To          *int   `json:"to"`
	ParentID    string `json:"parentId"`
	ID          string `json:"id"`
	ContainerID string `json:"containerId"`
}

func (app *application) moveHandler(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := readJSON(w, r, &req); err != nil {
		app.serverError(w, r, err)
		return
	}
	s, ok := app.session(w, r)
	if !ok {
		return
	}
	switch {
	case req.ID != "" && req.ContainerID != "":
		app.respondEdit(w, r, s, s.MoveToContainer(req.ID, req.ContainerID), nil)
	case req.From != nil && req.To != nil:
		app.respondEdit(w, r, s, s.MoveComponent(*req.From, *req.To, req.ParentID), nil)
	default:
		app.serverError(w, r, fmt.Errorf("%w: either from and to, or id and containerId, are required", errBadRequest))
	}
}

func (app *application) selectionHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := app.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"selected": s.Selected()})
}

type selectRequest struct {
	ID string `json:"id"`
}

// selectHandler selects a node; an empty id clears the selection.
func (app *application) selectHandler(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := readJSON(w, r, &req); err != nil {
		app.serverError(w, r, err)
		return
	}
	s, ok := app.session(w, r)
	if !ok {
		return
	}
	if !s.Select(req.ID) {
		app.serverError(w, r, fmt.Errorf("%w: %s", errComponentNotFound, req.ID))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"selected": s.Selected()})
}

type dragSourceRequest struct {
	Kind       string              `json:"kind"` // palette, template or node
	Type       model.ComponentType `json:"type"`
	TemplateID string              `json:"templateId"`
	NodeID     string              `json:"nodeId"`
}

func (req dragSourceRequest) source(roots []*model.Component) (dnd.Source, error) {
	switch req.Kind {
	case "palette":
		if req.Type == "" {
			return nil, fmt.Errorf("%w: palette source needs a type", errBadRequest)
		}
		return dnd.PaletteSource{Type: req.Type}, nil
	case "template":
		if req.TemplateID == "" {
			return nil, fmt.Errorf("%w: template source needs a templateId", errBadRequest)
		}
		return dnd.TemplateSource{TemplateID: req.TemplateID}, nil
	case "node":
		node := tree.Find(roots, req.NodeID)
		if node == nil {
			return nil, fmt.Errorf("%w: %s", errComponentNotFound, req.NodeID)
		}
		src := dnd.NodeSource{Node: node}
		if parent, ok := tree.FindParent(roots, req.NodeID); ok && parent != nil {
			src.ParentID = parent.ID
		}
		return src, nil
	}
	return nil, fmt.Errorf("%w: unknown drag source kind %q", errBadRequest, req.Kind)
}

func (app *application) dragStartHandler(w http.ResponseWriter, r *http.Request) {
	var req dragSourceRequest
	if err := readJSON(w, r, &req); err != nil {
		app.serverError(w, r, err)
		return
	}
	s, ok := app.session(w, r)
	if !ok {
		return
	}
	src, err := req.source(s.Components())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if err := s.BeginDrag(src); err != nil {
		app.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dragging": true})
}

type dragTargetRequest struct {
	Kind        string `json:"kind"` // canvas, container or root
	ID          string `json:"id"`
	ParentID    string `json:"parentId"`
	ContainerID string `json:"containerId"`
}

func (req dragTargetRequest) target() (dnd.Target, error) {
	switch req.Kind {
	case "canvas":
		if req.ID == "" {
			return nil, fmt.Errorf("%w: canvas target needs an id", errBadRequest)
		}
		return dnd.CanvasTarget{ID: req.ID, ParentID: req.ParentID}, nil
	case "container":
		if req.ContainerID == "" {
			return nil, fmt.Errorf("%w: container target needs a containerId", errBadRequest)
		}
		return dnd.ContainerTarget{ContainerID: req.ContainerID}, nil
	case "root":
		return dnd.RootSentinel{}, nil
	}
	return nil, fmt.Errorf("%w: unknown drop target kind %q", errBadRequest, req.Kind)
}

// dragEndHandler drops the active drag. A malformed target is rejected before
// the drag is closed so the client can retry.
func (app *application) dragEndHandler(w http.ResponseWriter, r *http.Request) {
	var req dragTargetRequest
	if err := readJSON(w, r, &req); err != nil {
		app.serverError(w, r, err)
		return
	}
	target, err := req.target()
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	s, ok := app.session(w, r)
	if !ok {
		return
	}
	intent, changed, err := s.EndDrag(target)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, editResponse{
		Changed:    changed,
		Selected:   s.Selected(),
		Intent:     intent.String(),
		Components: s.Components(),
	})
}

func (app *application) dragCancelHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := app.session(w, r)
	if !ok {
		return
	}
	s.CancelDrag()
	writeJSON(w, http.StatusOK, map[string]any{"dragging": false})
}

// sessionPage returns the stored page with the session's current tree.
func (app *application) sessionPage(w http.ResponseWriter, r *http.Request) (*model.Project, *model.Page, bool) {
	projectID, pageID := chi.URLParam(r, "projectID"), chi.URLParam(r, "pageID")
	project, err := app.pages.GetProject(projectID)
	if err != nil {
		app.serverError(w, r, err)
		return nil, nil, false
	}
	stored, err := app.pages.GetPage(projectID, pageID)
	if err != nil {
		app.serverError(w, r, err)
		return nil, nil, false
	}
	s, ok := app.session(w, r)
	if !ok {
		return nil, nil, false
	}
	page := *stored
	page.Components = s.Components()
	return project, &page, true
}

func (app *application) exportJSONHandler(w http.ResponseWriter, r *http.Request) {
	_, page, ok := app.sessionPage(w, r)
	if !ok {
		return
	}
	data, err := export.Marshal(page.Components, app.sources.List())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-%s.json"`, page.Slug, time.Now().Format("20060102")))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (app *application) exportMarkdownHandler(w http.ResponseWriter, r *http.Request) {
	_, page, ok := app.sessionPage(w, r)
	if !ok {
		return
	}
	md, err := app.engine.RenderMarkdown(page, app.sources.List())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(md))
}

func (app *application) exportHTMLHandler(w http.ResponseWriter, r *http.Request) {
	project, page, ok := app.sessionPage(w, r)
	if !ok {
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
