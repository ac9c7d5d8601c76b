// Package dnd turns drag gestures into tree mutations.
//
// A gesture is described by where the dragged item came from (Source) and what
// it was released over (Target). Both are closed sets of variants; Resolve maps
// every combination onto exactly one Intent, which is then applied to the tree.
package dnd

import (
	"fmt"

	"go-page-builder/internal/generator"
	"go-page-builder/internal/model"
	"go-page-builder/internal/tree"
)

// Source is the origin of a drag.
type Source interface {
	isSource()
}

// PaletteSource drags a new component of Type out of the palette.
type PaletteSource struct {
	Type model.ComponentType
}

// TemplateSource drags a prebuilt block out of the palette.
type TemplateSource struct {
	TemplateID string
}

// NodeSource drags an existing node. ParentID is "" for root-level nodes.
type NodeSource struct {
	Node     *model.Component
	ParentID string
}

func (PaletteSource) isSource()  {}
func (TemplateSource) isSource() {}
func (NodeSource) isSource()     {}

// Target is what the dragged item was released over.
type Target interface {
	isTarget()
}

// CanvasTarget is an existing node in some sibling list. ParentID is "" for root-level nodes.
type CanvasTarget struct {
	ID       string
	ParentID string
}

// ContainerTarget is the drop zone of a container node.
type ContainerTarget struct {
	ContainerID string
}

// RootSentinel is the empty canvas area past the last root node.
type RootSentinel struct{}

func (CanvasTarget) isTarget()    {}
func (ContainerTarget) isTarget() {}
func (RootSentinel) isTarget()    {}

// Intent is the mutation a finished drag resolves to.
type Intent interface {
	Apply(roots []*model.Component) []*model.Component
	String() string
}

// InsertIntent inserts a new node into the root list at Index.
type InsertIntent struct {
	Node  *model.Component
	Index int
}

// AppendToContainerIntent appends a new node to a container.
type AppendToContainerIntent struct {
	ContainerID string
	Node        *model.Component
}

// MoveToContainerIntent moves an existing node to the end of a container.
type MoveToContainerIntent struct {
	NodeID      string
	ContainerID string
}

// ReorderIntent moves a node within its own sibling list.
type ReorderIntent struct {
	From     int
	To       int
	ParentID string
}

// NoopIntent leaves the tree as it is.
type NoopIntent struct {
	Reason string
}

func (i InsertIntent) Apply(roots []*model.Component) []*model.Component {
	return tree.Insert(roots, i.Node, i.Index, "")
}

func (i AppendToContainerIntent) Apply(roots []*model.Component) []*model.Component {
	return tree.AddToContainer(roots, i.ContainerID, i.Node)
}

func (i MoveToContainerIntent) Apply(roots []*model.Component) []*model.Component {
	return tree.MoveToContainer(roots, i.NodeID, i.ContainerID)
}

func (i ReorderIntent) Apply(roots []*model.Component) []*model.Component {
	return tree.Move(roots, i.From, i.To, i.ParentID)
}

func (NoopIntent) Apply(roots []*model.Component) []*model.Component { return roots }

func (i InsertIntent) String() string {
	return fmt.Sprintf("insert %s at %d", i.Node.Type, i.Index)
}

func (i AppendToContainerIntent) String() string {
	return fmt.Sprintf("append %s to %s", i.Node.Type, i.ContainerID)
}

func (i MoveToContainerIntent) String() string {
	return fmt.Sprintf("move %s into %s", i.NodeID, i.ContainerID)
}

func (i ReorderIntent) String() string {
	return fmt.Sprintf("reorder %d -> %d under %q", i.From, i.To, i.ParentID)
}

func (i NoopIntent) String() string { return "noop: " + i.Reason }

// Resolve maps a finished drag onto an Intent. A nil target (released over
// nothing) resolves to a no-op. The only error is a palette drag naming an
// unknown component type or template.
func Resolve(roots []*model.Component, src Source, target Target, f *generator.Factory) (Intent, error) {
	if target == nil {
		return NoopIntent{Reason: "no drop target"}, nil
	}
	if f == nil {
		f = generator.NewFactory()
	}

	switch s := src.(type) {
	case PaletteSource:
		node, err := f.Create(s.Type)
		if err != nil {
			return nil, err
		}
		return placeNew(roots, node, target), nil
	case TemplateSource:
		node, err := f.BuildTemplate(s.TemplateID)
		if err != nil {
			return nil, err
		}
		return placeNew(roots, node, target), nil
	case NodeSource:
		return placeExisting(roots, s, target), nil
	case nil:
		return NoopIntent{Reason: "no drag source"}, nil
	default:
		return nil, fmt.Errorf("dnd: unsupported source %T", src)
	}
}

// placeNew handles palette drags: containers get an append, anything else is a
// root-level insert before the target (or at the end).
func placeNew(roots []*model.Component, node *model.Component, target Target) Intent {
	switch t := target.(type) {
	case ContainerTarget:
		return AppendToContainerIntent{ContainerID: t.ContainerID, Node: node}
	case CanvasTarget:
		index := tree.IndexOf(roots, t.ID)
		if index == -1 {
			index = len(roots)
		}
		return InsertIntent{Node: node, Index: index}
	default:
		return InsertIntent{Node: node, Index: len(roots)}
	}
}

func placeExisting(roots []*model.Component, s NodeSource, target Target) Intent {
	if s.Node == nil {
		return NoopIntent{Reason: "no dragged node"}
	}
	switch t := target.(type) {
	case ContainerTarget:
		return MoveToContainerIntent{NodeID: s.Node.ID, ContainerID: t.ContainerID}
	case CanvasTarget:
		if s.ParentID != t.ParentID {
			return NoopIntent{Reason: "cross-parent reorder"}
		}
		siblings, ok := tree.Siblings(roots, s.ParentID)
		if !ok {
			return NoopIntent{Reason: "parent not found"}
		}
		from := tree.IndexOf(siblings, s.Node.ID)
		to := tree.IndexOf(siblings, t.ID)
		if from == -1 || to == -1 || from == to {
			return NoopIntent{Reason: "nothing to reorder"}
		}
		return ReorderIntent{From: from, To: to, ParentID: s.ParentID}
	default:
		return NoopIntent{Reason: "existing node over empty canvas"}
	}
}
