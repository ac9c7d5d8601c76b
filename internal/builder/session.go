// Package builder holds the editing state of one page: its component tree,
// the current selection and the active drag.
package builder

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"go-page-builder/internal/dnd"
	"go-page-builder/internal/generator"
	"go-page-builder/internal/model"
	"go-page-builder/internal/pagemanager"
	"go-page-builder/internal/tree"
)

// ErrDetached is returned by Save on a session not bound to a stored page.
var ErrDetached = errors.New("builder: session is not attached to a page")

// ErrClosed is returned by drag and save calls on a closed session.
var ErrClosed = errors.New("builder: session is closed")

// Session edits one page. All methods are safe for concurrent use.
//
// Every mutation goes through the tree package; the component slice is only
// swapped when the operation changed something, and the selection is kept as
// an id so it always resolves to the current instance of the node.
type Session struct {
	mu         sync.Mutex
	projectID  string
	pageID     string
	components []*model.Component
	selected   string
	dirty      bool
	closed     bool

	drag    dnd.Tracker
	factory *generator.Factory
	pages   *pagemanager.PageManager
	logger  *slog.Logger

	// Autosave persists the page after every change when set.
	Autosave bool
}

// Open loads a stored page into a new session.
func Open(pages *pagemanager.PageManager, projectID, pageID string, logger *slog.Logger) (*Session, error) {
	page, err := pages.GetPage(projectID, pageID)
	if err != nil {
		return nil, err
	}
	s := New(page.Components, logger)
	s.pages = pages
	s.projectID = projectID
	s.pageID = pageID
	return s, nil
}

// New creates a detached session over components.
func New(components []*model.Component, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if components == nil {
		components = []*model.Component{}
	}
	return &Session{
		components: components,
		factory:    generator.NewFactory(),
		logger:     logger,
	}
}

// SetFactory replaces the component factory (used to control ids).
func (s *Session) SetFactory(f *generator.Factory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.factory = f
}

// ProjectID and PageID identify the page being edited; both are empty for detached sessions.
func (s *Session) ProjectID() string { return s.projectID }
func (s *Session) PageID() string    { return s.pageID }

// Close saves unsaved changes of an attached session and closes it. Edits on a
// closed session are ignored and drag or save calls fail with ErrClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	var err error
	if s.dirty && s.pages != nil {
		err = s.saveLocked()
	}
	s.closed = true
	s.drag.Cancel()
	s.logger.Debug("Closed editing session", "projectID", s.projectID, "pageID", s.pageID)
	return err
}

// Discard closes the session without saving.
func (s *Session) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.drag.Cancel()
}

// Closed reports whether Close or Discard was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Components returns the current root list. Callers must treat it as read-only.
func (s *Session) Components() []*model.Component {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.components
}

// Dirty reports whether there are changes not yet saved.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Selected returns the selected node as it is in the current tree, or nil.
func (s *Session) Selected() *model.Component {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == "" {
		return nil
	}
	return tree.Find(s.components, s.selected)
}

// Select selects the node with id; an empty id clears the selection.
// It reports false (and leaves the selection alone) when id is not in the tree.
func (s *Session) Select(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	if id == "" {
		s.selected = ""
		return true
	}
	if !tree.Contains(s.components, id) {
		return false
	}
	s.selected = id
	return true
}

// commit swaps in next if it differs from the current tree. The lock must be held.
func (s *Session) commit(op string, next []*model.Component) bool {
	if s.closed {
		s.logger.Warn("Ignored edit on closed session", "op", op, "pageID", s.pageID)
		return false
	}
	if tree.Same(s.components, next) {
		s.logger.Debug("Ignored no-op edit", "op", op, "pageID", s.pageID)
		return false
	}
	s.components = next
	s.dirty = true
	if s.selected != "" && !tree.Contains(next, s.selected) {
		s.selected = ""
	}
	s.logger.Debug("Applied edit", "op", op, "pageID", s.pageID, "nodes", tree.Count(next))
	if s.Autosave {
		if err := s.saveLocked(); err != nil && !errors.Is(err, ErrDetached) {
			s.logger.Error("Autosave failed", "pageID", s.pageID, "error", err)
		}
	}
	return true
}

// NewComponent creates a node of type t with the session's factory.
func (s *Session) NewComponent(t model.ComponentType) (*model.Component, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.factory.Create(t)
}

// AddComponent inserts node at index under parentID (roots when empty) and
// selects it. It returns false when the parent is missing or cannot hold
// children, or when the node's id is already in the tree.
func (s *Session) AddComponent(node *model.Component, index int, parentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked("add", node, index, parentID)
}

// InsertTemplate inserts a fresh copy of a prebuilt block like AddComponent
// and returns it, or nil when nothing was inserted.
func (s *Session) InsertTemplate(templateID string, index int, parentID string) (*model.Component, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, err := s.factory.BuildTemplate(templateID)
	if err != nil {
		return nil, err
	}
	if !s.insertLocked("insert-template", node, index, parentID) {
		return nil, nil
	}
	return node, nil
}

func (s *Session) insertLocked(op string, node *model.Component, index int, parentID string) bool {
	if node == nil || !s.commit(op, tree.Insert(s.components, node, index, parentID)) {
		return false
	}
	s.selected = node.ID
	return true
}

// AddToContainer appends node to a container and selects it.
func (s *Session) AddToContainer(containerID string, node *model.Component) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if node == nil || !s.commit("add-to-container", tree.AddToContainer(s.components, containerID, node)) {
		return false
	}
	s.selected = node.ID
	return true
}

// UpdateComponent applies patches to a node. A selected node stays selected and
// Selected returns its new instance.
func (s *Session) UpdateComponent(id string, patches ...tree.Patch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit("update", tree.Update(s.components, id, patches...))
}

// DeleteComponent removes a node and its subtree. The selection is cleared when it was
// the node or one of its descendants.
func (s *Session) DeleteComponent(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit("delete", tree.Delete(s.components, id))
}

// MoveComponent reorders the sibling list under parentID.
func (s *Session) MoveComponent(from, to int, parentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit("move", tree.Move(s.components, from, to, parentID))
}

// MoveToContainer moves an existing node to the end of a container.
func (s *Session) MoveToContainer(id, containerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit("move-to-container", tree.MoveToContainer(s.components, id, containerID))
}

// DuplicateComponent inserts a copy of the node right after it and returns the copy.
// The selection does not change.
func (s *Session) DuplicateComponent(id string) *model.Component {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := tree.Duplicate(s.components, id, s.factory.ID)
	if !s.commit("duplicate", next) {
		return nil
	}
	siblings, _ := tree.FindParent(next, id)
	list := next
	if siblings != nil {
		list = siblings.Children
	}
	if i := tree.IndexOf(list, id); i >= 0 && i+1 < len(list) {
		return list[i+1]
	}
	return nil
}

// Replace swaps the whole tree, clearing the selection.
func (s *Session) Replace(components []*model.Component) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if components == nil {
		components = []*model.Component{}
	}
	if !s.commit("replace", components) {
		return false
	}
	s.selected = ""
	return true
}

// BeginDrag opens a drag. Only one drag may be active.
func (s *Session) BeginDrag(src dnd.Source) error {
	if s.Closed() {
		return ErrClosed
	}
	if err := s.drag.Start(src); err != nil {
		return err
	}
	s.logger.Debug("Drag started", "pageID", s.pageID, "source", fmt.Sprintf("%T", src))
	return nil
}

// EndDrag closes the active drag over target, resolves it and applies the
// resulting intent. The drag is closed whatever the outcome.
func (s *Session) EndDrag(target dnd.Target) (dnd.Intent, bool, error) {
	if s.Closed() {
		return nil, false, ErrClosed
	}
	src, err := s.drag.End()
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	intent, err := dnd.Resolve(s.components, src, target, s.factory)
	if err != nil {
		return nil, false, err
	}
	changed := s.commit("drop", intent.Apply(s.components))
	if changed {
		switch in := intent.(type) {
		case dnd.InsertIntent:
			s.selected = in.Node.ID
		case dnd.AppendToContainerIntent:
			s.selected = in.Node.ID
		}
	}
	s.logger.Debug("Drag ended", "pageID", s.pageID, "intent", intent.String(), "changed", changed)
	return intent, changed, nil
}

// CancelDrag drops the active drag without changing the tree.
func (s *Session) CancelDrag() {
	s.drag.Cancel()
}

// Dragging reports whether a drag is open.
func (s *Session) Dragging() bool {
	return s.drag.State() == dnd.Dragging
}

// Save persists the current tree to the page it was opened from.
func (s *Session) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Session) saveLocked() error {
	if s.closed {
		return ErrClosed
	}
	if s.pages == nil {
		return ErrDetached
	}
	if _, err := s.pages.UpdatePageComponents(s.projectID, s.pageID, s.components); err != nil {
		return err
	}
	s.dirty = false
	s.logger.Info("Saved page", "projectID", s.projectID, "pageID", s.pageID)
	return nil
}
