package dnd

import (
	"errors"
	"sync"
)

var (
	ErrDragInProgress = errors.New("dnd: a drag is already in progress")
	ErrNotDragging    = errors.New("dnd: no drag in progress")
)

// State is the tracker's mode.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Tracker holds the single active drag. Only one drag may be open at a time.
type Tracker struct {
	mu     sync.Mutex
	state  State
	source Source
}

// Start enters Dragging with src.
func (t *Tracker) Start(src Source) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == Dragging {
		return ErrDragInProgress
	}
	t.state = Dragging
	t.source = src
	return nil
}

// End leaves Dragging and hands back the source that was being dragged.
func (t *Tracker) End() (Source, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Dragging {
		return nil, ErrNotDragging
	}
	src := t.source
	t.state = Idle
	t.source = nil
	return src, nil
}

// Cancel drops any active drag.
func (t *Tracker) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = Idle
	t.source = nil
}

// State reports the current mode.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
