package dnd

import (
	"errors"
	"fmt"
	"testing"

	"go-page-builder/internal/generator"
	"go-page-builder/internal/model"
	"go-page-builder/internal/tree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFactory() *generator.Factory {
	n := 0
	return &generator.Factory{NewID: func() string {
		n++
		return fmt.Sprintf("new%d", n)
	}}
}

func node(id string, t model.ComponentType, children ...*model.Component) *model.Component {
	c := &model.Component{ID: id, Type: t, Props: model.Props{}, Styles: model.Styles{}}
	if generator.IsContainer(t) {
		c.Children = append([]*model.Component{}, children...)
	}
	return c
}

// canvas:
//
//	h
//	box (container)
//	  p
//	  btn
//	hr
func canvas() []*model.Component {
	return []*model.Component{
		node("h", model.TypeHeading),
		node("box", model.TypeContainer, node("p", model.TypeParagraph), node("btn", model.TypeButton)),
		node("hr", model.TypeDivider),
	}
}

func rootIDs(roots []*model.Component) []string {
	out := make([]string, len(roots))
	for i, c := range roots {
		out[i] = c.ID
	}
	return out
}

func TestPaletteOntoContainerAppends(t *testing.T) {
	roots := canvas()
	intent, err := Resolve(roots, PaletteSource{Type: model.TypeImage}, ContainerTarget{ContainerID: "box"}, testFactory())
	require.NoError(t, err)

	appendIntent, ok := intent.(AppendToContainerIntent)
	require.True(t, ok, "got %s", intent)
	assert.Equal(t, "box", appendIntent.ContainerID)
	assert.Equal(t, model.TypeImage, appendIntent.Node.Type)

	out := intent.Apply(roots)
	box := tree.Find(out, "box")
	require.Len(t, box.Children, 3)
	assert.Equal(t, "new1", box.Children[2].ID)
}

func TestPaletteOntoCanvasNodeInsertsBefore(t *testing.T) {
	roots := canvas()
	intent, err := Resolve(roots, PaletteSource{Type: model.TypeButton}, CanvasTarget{ID: "hr"}, testFactory())
	require.NoError(t, err)
	assert.Equal(t, 2, intent.(InsertIntent).Index)

	out := intent.Apply(roots)
	assert.Equal(t, []string{"h", "box", "new1", "hr"}, rootIDs(out))
}

func TestPaletteOntoNestedNodeInsertsAtEndOfRoots(t *testing.T) {
	roots := canvas()
	intent, err := Resolve(roots, PaletteSource{Type: model.TypeButton}, CanvasTarget{ID: "p", ParentID: "box"}, testFactory())
	require.NoError(t, err)
	assert.Equal(t, 3, intent.(InsertIntent).Index)
}

func TestPaletteOntoRootSentinelAppends(t *testing.T) {
	roots := canvas()
	intent, err := Resolve(roots, PaletteSource{Type: model.TypeRow}, RootSentinel{}, testFactory())
	require.NoError(t, err)

	out := intent.Apply(roots)
	require.Len(t, out, 4)
	row := out[3]
	assert.Equal(t, model.TypeRow, row.Type)
	require.Len(t, row.Children, 2)
	assert.Equal(t, model.TypeColumn, row.Children[0].Type)
}

func TestPaletteUnknownType(t *testing.T) {
	_, err := Resolve(canvas(), PaletteSource{Type: "carousel"}, RootSentinel{}, testFactory())
	require.Error(t, err)
	assert.True(t, errors.Is(err, generator.ErrUnknownType))
}

func TestTemplateSourceInsertsSubtree(t *testing.T) {
	roots := canvas()
	intent, err := Resolve(roots, TemplateSource{TemplateID: "two-col-feature"}, ContainerTarget{ContainerID: "box"}, testFactory())
	require.NoError(t, err)

	out := intent.Apply(roots)
	box := tree.Find(out, "box")
	require.Len(t, box.Children, 3)
	assert.Equal(t, model.TypeRow, box.Children[2].Type)

	_, err = Resolve(roots, TemplateSource{TemplateID: "nope"}, RootSentinel{}, testFactory())
	assert.Error(t, err)
}

func TestExistingOntoContainerMoves(t *testing.T) {
	roots := canvas()
	src := NodeSource{Node: tree.Find(roots, "h")}
	intent, err := Resolve(roots, src, ContainerTarget{ContainerID: "box"}, nil)
	require.NoError(t, err)
	require.IsType(t, MoveToContainerIntent{}, intent)

	out := intent.Apply(roots)
	assert.Equal(t, []string{"box", "hr"}, rootIDs(out))
	assert.Equal(t, []string{"p", "btn", "h"}, rootIDs(tree.Find(out, "box").Children))
	assert.Equal(t, 5, tree.Count(out))
}

func TestContainerOntoItselfIsNoop(t *testing.T) {
	roots := canvas()
	intent, err := Resolve(roots, NodeSource{Node: tree.Find(roots, "box")}, ContainerTarget{ContainerID: "box"}, nil)
	require.NoError(t, err)

	out := intent.Apply(roots)
	assert.True(t, tree.Same(roots, out))
}

func TestReorderSameParent(t *testing.T) {
	roots := canvas()
	intent, err := Resolve(roots, NodeSource{Node: tree.Find(roots, "h")}, CanvasTarget{ID: "hr"}, nil)
	require.NoError(t, err)
	assert.Equal(t, ReorderIntent{From: 0, To: 2}, intent)

	out := intent.Apply(roots)
	assert.Equal(t, []string{"box", "hr", "h"}, rootIDs(out))
}

func TestReorderNested(t *testing.T) {
	roots := canvas()
	src := NodeSource{Node: tree.Find(roots, "btn"), ParentID: "box"}
	intent, err := Resolve(roots, src, CanvasTarget{ID: "p", ParentID: "box"}, nil)
	require.NoError(t, err)

	out := intent.Apply(roots)
	assert.Equal(t, []string{"btn", "p"}, rootIDs(tree.Find(out, "box").Children))
	assert.Same(t, roots[0], out[0])
}

func TestCrossParentReorderIsIgnored(t *testing.T) {
	roots := canvas()
	src := NodeSource{Node: tree.Find(roots, "p"), ParentID: "box"}
	intent, err := Resolve(roots, src, CanvasTarget{ID: "h"}, nil)
	require.NoError(t, err)
	assert.Equal(t, NoopIntent{Reason: "cross-parent reorder"}, intent)
	assert.True(t, tree.Same(roots, intent.Apply(roots)))
}

func TestNullTargetIsNoop(t *testing.T) {
	roots := canvas()
	for _, src := range []Source{PaletteSource{Type: model.TypeButton}, NodeSource{Node: roots[0]}} {
		intent, err := Resolve(roots, src, nil, nil)
		require.NoError(t, err)
		assert.IsType(t, NoopIntent{}, intent)
		assert.True(t, tree.Same(roots, intent.Apply(roots)))
	}
}

func TestDropOntoSelfIsNoop(t *testing.T) {
	roots := canvas()
	intent, err := Resolve(roots, NodeSource{Node: roots[0]}, CanvasTarget{ID: "h"}, nil)
	require.NoError(t, err)
	assert.IsType(t, NoopIntent{}, intent)
}

func TestTracker(t *testing.T) {
	var tr Tracker
	assert.Equal(t, Idle, tr.State())

	_, err := tr.End()
	assert.ErrorIs(t, err, ErrNotDragging)

	require.NoError(t, tr.Start(PaletteSource{Type: model.TypeButton}))
	assert.Equal(t, Dragging, tr.State())
	assert.ErrorIs(t, tr.Start(PaletteSource{Type: model.TypeHeading}), ErrDragInProgress)

	src, err := tr.End()
	require.NoError(t, err)
	assert.Equal(t, PaletteSource{Type: model.TypeButton}, src)
	assert.Equal(t, Idle, tr.State())

	require.NoError(t, tr.Start(NodeSource{Node: node("x", model.TypeButton)}))
	tr.Cancel()
	assert.Equal(t, Idle, tr.State())
	_, err = tr.End()
	assert.ErrorIs(t, err, ErrNotDragging)
}
